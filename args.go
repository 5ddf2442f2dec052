package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ironsmile/vulkan-video-example/trade/tgaimporter"
	"github.com/ironsmile/vulkan-video-example/video"
)

// engineFlagPrefix marks options meant for the engine. Engine options which
// are not defined below are skipped together with their value, so they may be
// passed as -engine-name=value or -engine-name value.
const engineFlagPrefix = "engine-"

// arguments holds the parsed command line.
type arguments struct {
	file string

	videoImporter string
	imageImporter string
	pluginDir     string

	// Engine specific options, prefixed with -engine-.
	debug      bool
	windowSize windowSize
}

// windowSize is a flag.Value accepting WIDTHxHEIGHT.
type windowSize struct {
	width  int
	height int
}

func (s *windowSize) String() string {
	return fmt.Sprintf("%dx%d", s.width, s.height)
}

func (s *windowSize) Set(value string) error {
	w, h, found := strings.Cut(strings.ToLower(value), "x")
	if !found {
		return fmt.Errorf("expected WIDTHxHEIGHT, got %q", value)
	}

	width, err := strconv.Atoi(w)
	if err != nil {
		return fmt.Errorf("parsing width: %w", err)
	}

	height, err := strconv.Atoi(h)
	if err != nil {
		return fmt.Errorf("parsing height: %w", err)
	}

	if width <= 0 || height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", width, height)
	}

	s.width = width
	s.height = height
	return nil
}

func parseArgs(name string, argv []string, output io.Writer) (arguments, error) {
	args := arguments{
		windowSize: windowSize{width: 1024, height: 768},
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s [flags] file\n\n", name)
		fmt.Fprintf(flags.Output(), "Plays the video file while drawing a "+
			"textured triangle.\n\n")
		flags.PrintDefaults()
	}

	flags.StringVar(&args.videoImporter, "video-importer", video.AnyVideoImporter,
		"Video importer plugin used for opening the file")
	flags.StringVar(&args.imageImporter, "image-importer", tgaimporter.Name,
		"Image importer plugin used for the triangle texture")
	flags.StringVar(&args.pluginDir, "plugin-dir", "",
		"Directory searched for dynamic plugins (<dir>/<Name>.so)")
	flags.BoolVar(&args.debug, "engine-debug", false,
		"Enable Vulkan validation layers")
	flags.Var(&args.windowSize, "engine-window-size", "Window size as WIDTHxHEIGHT")

	if err := flags.Parse(reorderArgs(flags, argv)); err != nil {
		return args, err
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return args, fmt.Errorf("expected exactly one file argument, got %d",
			flags.NArg())
	}
	args.file = flags.Arg(0)

	return args, nil
}

// reorderArgs moves the options in front of the positional arguments and drops
// unknown engine options. The file argument may then appear anywhere on the
// command line. Everything after "--" is positional.
func reorderArgs(flags *flag.FlagSet, argv []string) []string {
	var options, positional []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			positional = append(positional, argv[i+1:]...)
			break
		}

		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}

		name := strings.TrimPrefix(arg[1:], "-")
		name, _, hasValue := strings.Cut(name, "=")
		defined := flags.Lookup(name)

		if defined == nil && strings.HasPrefix(name, engineFlagPrefix) {
			if !hasValue && i+1 < len(argv) {
				i++
			}
			continue
		}

		options = append(options, arg)
		if defined != nil && !hasValue && !isBoolFlag(defined) && i+1 < len(argv) {
			i++
			options = append(options, argv[i])
		}
	}

	options = append(options, "--")
	return append(options, positional...)
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
