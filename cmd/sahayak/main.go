package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"sahayak/internal/asr"
	"sahayak/internal/audio"
	"sahayak/internal/geo"
	"sahayak/internal/gps"
	"sahayak/internal/intent"
	"sahayak/internal/ipc"
	"sahayak/internal/loop"
	"sahayak/internal/notify"
	"sahayak/internal/respond"
	"sahayak/internal/tts"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// locator chains the GPS reader and the place resolver for the planner.
type locator struct {
	reader   *gps.Reader
	resolver *geo.Resolver
	maxLines int
}

func (l *locator) Locate() (string, string, bool) {
	return l.resolver.Resolve(l.reader.GetFix(l.maxLines))
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	mode := cli.StringP("mode", "m", "streaming", "Capture mode: streaming or turn")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	rate := cli.Int("rate", 44100, "Mic sample rate (must match the Vosk model init)")
	block := cli.Int("block", 1024, "Mic block size in samples")
	queue := cli.Int("queue", 32, "Chunk queue depth in streaming mode")
	record := cli.Duration("record", 2*time.Second, "Recording length per turn in turn mode")
	window := cli.Duration("window", 2*time.Second, "TTS output read window per reply")
	gpsLines := cli.Int("gps-lines", 60, "NMEA lines to scan before giving up on a fix")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	voskModel := env("VOSK_MODEL", "vosk-model-hi")
	piperModel := env("PIPER_MODEL", "hi_IN-pratham-medium.onnx")
	gpsPort := env("GPS_PORT", "/dev/serial0")

	rec := audio.NewRecorder(*rate, *block)
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("Loaded recorder")

	recognizer, err := asr.New(voskModel, float64(*rate))
	if err != nil {
		log.Error("Failed to load vosk model", "model", voskModel, "err", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	log.Debug("Loaded vosk", "model", voskModel)

	player, err := audio.NewPlayer(tts.SampleRate)
	if err != nil {
		log.Error("Failed to open playback", "err", err)
		os.Exit(1)
	}
	defer player.Close()

	bridge := tts.NewBridge(piperModel, *window, player)
	if err := bridge.Start(); err != nil {
		log.Warn("Persistent piper unavailable, replies fall back to file synthesis", "err", err)
	}
	defer bridge.Close()

	log.Debug("Loaded piper", "model", piperModel)

	gpsReader := gps.NewReader(gpsPort)
	defer gpsReader.Close()

	planner := respond.NewPlanner(time.Now, &locator{
		reader:   gpsReader,
		resolver: geo.NewResolver(),
		maxLines: *gpsLines,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm up piper so the first user turn does not pay model load.
	if err := bridge.Speak("तैयार"); err != nil {
		log.Warn("Warm-up failed", "err", err)
	}

	var trigger chan struct{}
	if *mode == "turn" {
		trigger = make(chan struct{}, 1)
		err := ipc.StartServer(func(msg ipc.ControlMessage) {
			switch msg.Cmd {
			case ipc.CmdTrigger:
				select {
				case trigger <- struct{}{}:
				default:
				}
			case ipc.CmdStop:
				stop()
			default:
				log.Warn("Unknown command", "cmd", msg.Cmd)
			}
		})
		if err != nil {
			log.Error("Failed ipc server", "err", err)
			os.Exit(1)
		}
	}

	l := loop.New(rec, recognizer, intent.NewClassifier(), planner, bridge, loop.Options{
		QueueDepth: *queue,
		RecordFor:  *record,
		Trigger:    trigger,
		Chime:      notify.Chime,
	})

	log.Info("Boot up - successful", "mode", *mode)

	switch *mode {
	case "turn":
		err = l.RunTurns(ctx)
	default:
		err = l.Run(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Voice loop failed", "err", err)
		os.Exit(1)
	}

	log.Info("Stopped")
}
