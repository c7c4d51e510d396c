// shadercache inspects and exercises the render engine's program cache.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/flinger/internal/config"
	"github.com/Faultbox/flinger/internal/logger"
	"github.com/Faultbox/flinger/internal/renderengine/programcache"
	"github.com/Faultbox/flinger/pkg/math"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command, args := args[0], args[1:]
	switch command {
	case "keys", "ls":
		err = cmdKeys()
	case "source", "src":
		err = cmdSource(args)
	case "compile":
		err = cmdCompile(cfg, args)
	case "init-config":
		err = cmdInitConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shadercache - render engine program cache utility

Usage:
  shadercache [flags] <command> [options]

Commands:
  keys                   List the keys generated by cache priming
  source <key>           Print the vertex and fragment shader for a packed key
  compile [all]          Compile the primed (or every) variant on a GLES 2.0 context
  init-config [path]     Write the current configuration as YAML

Flags:
  -config <path>  -debug  -width <px>  -height <px>  -no-prime

Examples:
  shadercache keys
  shadercache source 0x0b2
  shadercache -debug compile all`)
}

// dryLinker lets the cache prime without a GL context. Its programs are
// never valid, so the cache never binds them.
type dryLinker struct{}

func (dryLinker) Link(vertexSrc, fragmentSrc string) programcache.Program {
	return dryProgram{}
}

type dryProgram struct{}

func (dryProgram) IsValid() bool { return false }
func (dryProgram) Use() {}
func (dryProgram) GetUniform(string) int32 { return -1 }
func (dryProgram) SetUniform1i(int32, int32) {}
func (dryProgram) SetUniform1f(int32, float32) {}
func (dryProgram) SetUniform4f(int32, float32, float32, float32, float32) {}
func (dryProgram) SetUniformMatrix4(int32, *math.Mat4) {}

func cmdKeys() error {
	cache := programcache.New(dryLinker{}, programcache.Config{
		Prime:  true,
		Logger: logger.Named("programcache"),
	})

	for _, k := range cache.Keys() {
		fmt.Printf("%s\n    %s\n", k, strings.Join(programcache.FragmentBlocks(k), " "))
	}
	fmt.Printf("\n%d keys\n", cache.Len())
	return nil
}

func cmdSource(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: shadercache source <key>")
	}
	k, err := parseKey(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("// %s vertex\n%s\n", k, programcache.GenerateVertexShader(k))
	fmt.Printf("// %s fragment\n%s", k, programcache.GenerateFragmentShader(k))
	return nil
}

// parseKey parses a packed key such as "0x0b2" or "178".
func parseKey(s string) (programcache.Key, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return programcache.Key{}, fmt.Errorf("parsing key %q: %w", s, err)
	}
	b := programcache.Bits(v)
	if b&^programcache.FieldsMask != 0 {
		return programcache.Key{}, fmt.Errorf("key %#x has bits outside %#x", v, uint32(programcache.FieldsMask))
	}
	k := programcache.Decode(b)
	if !k.Valid() {
		return programcache.Key{}, fmt.Errorf("key %#x has an unknown texture target", v)
	}
	return k, nil
}

func cmdInitConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s/config.yaml\n", config.ConfigDir())
	return nil
}
