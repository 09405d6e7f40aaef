// Command spongesum computes or verifies SpongeHash-AES256 digests of
// files, directories, and standard input.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/golang/glog"
	flag "github.com/spf13/pflag"

	"github.com/lordmulder/sponge-hash-aes256/internal/driver"
	"github.com/lordmulder/sponge-hash-aes256/spongehash"
)

const version = "1.0.0"

var (
	binaryMode    bool
	textMode      bool
	check         bool
	dirs          bool
	recursive     bool
	allFiles      bool
	keepGoing     bool
	lengthBits    int
	infoString    string
	snailLevel    int
	quiet         bool
	plain         bool
	nullTerminate bool
	multiThreaded bool
	flush         bool
	selfTest      bool
	showVersion   bool
)

func init() {
	flag.BoolVarP(&binaryMode, "binary", "b", true, "read files in binary mode (default)")
	flag.BoolVarP(&textMode, "text", "t", false, "read files in text mode (line-ending normalization)")
	flag.BoolVarP(&check, "check", "c", false, "interpret each argument as a checksum file and verify")
	flag.BoolVarP(&dirs, "dirs", "d", false, "accept directory arguments (flat)")
	flag.BoolVarP(&recursive, "recursive", "r", false, "recurse into directories (implies --dirs)")
	flag.BoolVarP(&allFiles, "all", "a", false, "include non-regular files during traversal")
	flag.BoolVarP(&keepGoing, "keep-going", "k", false, "do not stop at first error")
	flag.IntVarP(&lengthBits, "length", "l", 256, "digest length in bits, 8..2048, multiple of 8")
	flag.StringVarP(&infoString, "info", "i", "", "prefix the hash state with a domain string before absorbing file data")
	flag.CountVarP(&snailLevel, "snail", "s", "increment snail level (repeatable)")
	flag.BoolVarP(&quiet, "quiet", "q", false, "suppress non-fatal diagnostics")
	flag.BoolVarP(&plain, "plain", "p", false, "omit filenames from output lines")
	flag.BoolVarP(&nullTerminate, "null", "0", false, "terminate output lines with NUL instead of newline")
	flag.BoolVarP(&multiThreaded, "multi-threading", "m", false, "enable worker pool")
	flag.BoolVarP(&flush, "flush", "f", false, "flush stdout after each line")
	flag.BoolVarP(&selfTest, "self-test", "T", false, "run built-in self-test; non-zero exit on mismatch")
	flag.BoolVarP(&showVersion, "version", "V", false, "print version and exit")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if showVersion {
		fmt.Println("spongesum", version)
		return driver.ExitSuccess
	}

	if selfTest {
		if err := spongehash.SelfTest(); err != nil {
			fmt.Fprintln(os.Stderr, "spongesum: self-test failed:", err)
			return driver.ExitError
		}
		fmt.Println("spongesum: self-test passed")
		return driver.ExitSuccess
	}

	lengthBytes, err := driver.ValidateLength(lengthBits)
	if err != nil {
		fmt.Fprintln(os.Stderr, "spongesum:", err)
		return driver.ExitUsage
	}
	cfg := &driver.Config{
		Dirs:           dirs,
		Recursive:      recursive,
		AllFiles:       allFiles,
		KeepGoing:      keepGoing,
		LengthBytes:    lengthBytes,
		InfoString:     infoString,
		Snail:          snailLevel,
		Quiet:          quiet,
		Plain:          plain,
		NullTerminate:  nullTerminate,
		MultiThreaded:  multiThreaded,
		Flush:          flush,
		TextMode:       textMode,
		Verify:         check,
		SearchOrderEnv: os.Getenv("SPONGE_SEARCH"),
	}

	if !quiet {
		glog.V(2).Infof("spongesum: config %+v", *cfg)
	}

	return driver.Run(context.Background(), cfg, flag.Args(), os.Stdout)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: spongesum [options] [file|dir|-]...\n\n")
	flag.PrintDefaults()
}
