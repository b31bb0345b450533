// Command syzplay is a demo CLI for the engine: it opens an audio device,
// exposes a small Lua console for building up a source/generator/effect
// graph interactively, and optionally plays back a decoded file from the
// command line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/intuitionamiga/syzcore"
	"github.com/intuitionamiga/syzcore/backend"
	"github.com/intuitionamiga/syzcore/decoder"
	"github.com/intuitionamiga/syzcore/internal/script"
	"github.com/intuitionamiga/syzcore/stream"
)

func main() {
	var (
		channels  = flag.Int("channels", 2, "output channel count")
		headless  = flag.Bool("headless", false, "use the null audio backend instead of a real device")
		playFile  = flag.String("play", "", "decode and loop-play this file through a direct source on startup")
		scriptArg = flag.String("script", "", "run this Lua script file against the console on startup, then exit")
		logLevel  = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	})))

	be := audioBackend(*headless)
	ctx, err := syzcore.NewContext(be, *channels)
	if err != nil {
		slog.Error("failed to start engine", "error", err)
		os.Exit(1)
	}
	defer ctx.Shutdown()

	go logEvents(ctx)

	if *playFile != "" {
		if err := playFileOnStartup(ctx, *playFile); err != nil {
			slog.Error("failed to start playback", "file", *playFile, "error", err)
		}
	}

	console := script.NewConsole(syzcore.NewScriptEngine(ctx))
	defer console.Close()

	if *scriptArg != "" {
		src, err := os.ReadFile(*scriptArg)
		if err != nil {
			slog.Error("failed to read script", "path", *scriptArg, "error", err)
			os.Exit(1)
		}
		if err := console.Run(string(src)); err != nil {
			slog.Error("script failed", "error", err)
			os.Exit(1)
		}
		return
	}

	runREPL(console)
}

func audioBackend(headless bool) backend.AudioBackend {
	if headless {
		return backend.NewNullBackend()
	}
	return backend.NewOtoBackend()
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func logEvents(ctx *syzcore.Context) {
	for ev := range ctx.Events() {
		slog.Info("engine event", "kind", ev.Kind, "source", ev.Source, "generator", ev.Generator)
	}
}

// playFileOnStartup decodes path fully into memory and loops it through a
// new direct source, a quick way to sanity-check the decode/playback path
// without touching the console.
func playFileOnStartup(ctx *syzcore.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	s := stream.NewFileStream(f)
	dec, err := decoder.Open(s)
	if err != nil {
		f.Close()
		return fmt.Errorf("opening decoder for %s: %w", path, err)
	}

	const chunkFrames = 4096
	channels := dec.Channels()
	var pcm []float32
	chunk := make([]float32, chunkFrames*channels)
	for {
		n, err := dec.Decode(chunk)
		if n > 0 {
			pcm = append(pcm, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	f.Close()

	genHandle := ctx.CreateBufferGenerator(pcm, channels)
	if err := ctx.SetBufferLooping(genHandle, true); err != nil {
		return err
	}
	srcHandle, err := ctx.CreateDirectSource(channels)
	if err != nil {
		return err
	}
	if err := ctx.AttachGenerator(srcHandle, genHandle); err != nil {
		return err
	}
	slog.Info("playing file", "path", path, "source", srcHandle, "generator", genHandle)
	return nil
}

func runREPL(console *script.Console) {
	isTerminal := term.IsTerminal(int(os.Stdin.Fd()))
	if isTerminal {
		fmt.Println("syzplay console. Enter Lua statements, e.g.:")
		fmt.Println(`  s = create_source("direct")`)
		fmt.Println(`  g = create_generator("noise", {spectrum="white"})`)
		fmt.Println(`  attach_generator(s, g)`)
		fmt.Println(`  set_property(s, "gain", 0.5)`)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := console.Run(line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
