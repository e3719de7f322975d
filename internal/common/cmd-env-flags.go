// This module wraps the flag package: CmdEnvBool, CmdEnvString and CmdEnvInt
// register command-line flags with a custom usage listing. No environment
// variable is read for these flags; ParseCmdFlagsCombiningWithEnv parses the
// command line only. Environment overrides such as GOJIT_CACHE_DIR are read
// by the code that uses them (buildcache.PathService, for example).

package common

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type cmdLineArg interface {
	flag.Value
	isFlagSet() bool
	getCmdName() string
	getDescription() string
}

var allCmdLineArgs []cmdLineArg

type cmdLineArgBool struct {
	cmdName string
	usage   string

	isSet bool
	def   bool
	value bool
}

func (s *cmdLineArgBool) String() string {
	return strconv.FormatBool(s.value)
}

func (s *cmdLineArgBool) Set(v string) error {
	s.isSet = true
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	s.value = b
	return nil
}

func (s *cmdLineArgBool) IsBoolFlag() bool {
	return true
}

func (s *cmdLineArgBool) getDescription() string {
	return s.usage
}

func (s *cmdLineArgBool) isFlagSet() bool {
	return s.isSet
}

func (s *cmdLineArgBool) getCmdName() string {
	return s.cmdName
}

type cmdLineArgString struct {
	cmdName string
	usage   string

	isSet bool
	def   string
	value string
}

func (s *cmdLineArgString) String() string {
	return s.value
}

func (s *cmdLineArgString) Set(v string) error {
	s.isSet = true
	s.value = v
	return nil
}

func (s *cmdLineArgString) getDescription() string {
	return s.usage
}

func (s *cmdLineArgString) isFlagSet() bool {
	return s.isSet
}

func (s *cmdLineArgString) getCmdName() string {
	return s.cmdName
}

type cmdLineArgInt struct {
	cmdName string
	usage   string

	isSet bool
	def   int
	value int
}

func (s *cmdLineArgInt) String() string {
	return strconv.Itoa(s.value)
}

func (s *cmdLineArgInt) Set(v string) error {
	s.isSet = true
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	s.value = n
	return nil
}

func (s *cmdLineArgInt) getDescription() string {
	return s.usage
}

func (s *cmdLineArgInt) isFlagSet() bool {
	return s.isSet
}

func (s *cmdLineArgInt) getCmdName() string {
	return s.cmdName
}

func initCmdFlag(s cmdLineArg, cmdName string, usage string) {
	if cmdName != "" { // only env var makes sense
		flag.Var(s, cmdName, usage)
	}
}

func customPrintUsage() {
	fmt.Printf("Usage of %s:\n\n", os.Args[0])
	for _, f := range allCmdLineArgs {
		if f.getCmdName() != "" {
			fmt.Printf("  -%s\n", f.getCmdName())
		}
		fmt.Print("    \t")
		fmt.Print(strings.ReplaceAll(f.getDescription(), "\n", "\n    \t"))
		fmt.Print("\n\n")
	}
}

func CmdEnvBool(usage string, def bool, cmdFlagName string) *bool {
	var sf = &cmdLineArgBool{cmdFlagName, usage, false, def, def}
	allCmdLineArgs = append(allCmdLineArgs, sf)
	initCmdFlag(sf, cmdFlagName, usage)
	return &sf.value
}

func CmdEnvString(usage string, def string, cmdFlagName string) *string {
	var sf = &cmdLineArgString{cmdFlagName, usage, false, def, def}
	allCmdLineArgs = append(allCmdLineArgs, sf)
	initCmdFlag(sf, cmdFlagName, usage)
	return &sf.value
}

func CmdEnvInt(usage string, def int, cmdFlagName string) *int {
	var sf = &cmdLineArgInt{cmdFlagName, usage, false, def, def}
	allCmdLineArgs = append(allCmdLineArgs, sf)
	initCmdFlag(sf, cmdFlagName, usage)
	return &sf.value
}

// EnvOverrideString returns the value of envName if it's set in the environment,
// otherwise def. The cache-root and compile-log-echo overrides from spec §6 do
// not go through it: PathService and RecompileGuard read those variables directly.
func EnvOverrideString(envName string, def string) string {
	if v, ok := os.LookupEnv(envName); ok {
		return v
	}
	return def
}

func ParseCmdFlagsCombiningWithEnv() {
	flag.Usage = customPrintUsage
	flag.Parse()
}
