// inkypi-render produces one fitted display image from an FTP server and
// writes it to a local file — the same operation the display pipeline
// drives, runnable headless.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/flakysalt/InkyPi/internal/browser"
	"github.com/flakysalt/InkyPi/internal/logging"
)

func main() {
	settings := browser.DefaultSettings()

	flag.StringVar(&settings.Server, "server", "", "FTP server host (required)")
	flag.IntVar(&settings.Port, "port", settings.Port, "FTP server port")
	flag.StringVar(&settings.Username, "user", settings.Username, "FTP username")
	flag.StringVar(&settings.Password, "pass", "", "FTP password")
	flag.BoolVar(&settings.UseTLS, "tls", false, "use explicit FTPS")
	active := flag.Bool("active", false, "use active data connections instead of passive")
	flag.StringVar(&settings.Encoding, "encoding", settings.Encoding, "filename encoding (latin-1, cp1252, utf-8)")
	flag.StringVar(&settings.CurrentPath, "path", settings.CurrentPath, "directory to pick from in random mode")
	flag.BoolVar(&settings.RandomMode, "random", false, "pick a random image under -path")
	flag.StringVar(&settings.SelectedImage, "image", "", "explicit remote image path")
	flag.StringVar(&settings.VerticalHandling, "vertical", settings.VerticalHandling, "portrait-on-landscape policy: rotate or crop")
	flag.BoolVar(&settings.PadImage, "pad", false, "letterbox instead of stretching")
	width := flag.Int("width", 800, "display width")
	height := flag.Int("height", 480, "display height")
	timeout := flag.Duration("timeout", 15*time.Second, "FTP timeout")
	out := flag.String("out", "display.png", "output file")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if err := logging.Init(logging.Config{Level: *logLevel, Format: "console"}); err != nil {
		fmt.Fprintln(os.Stderr, "logging init error:", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if settings.Server == "" {
		fmt.Fprintln(os.Stderr, "-server is required")
		flag.Usage()
		os.Exit(2)
	}
	settings.Passive = !*active
	settings.Timeout = *timeout

	img, err := browser.New().GenerateImage(settings, *width, *height)
	if err != nil {
		logging.Fatal("render failed", zap.Error(err))
	}

	if err := imaging.Save(img, *out); err != nil {
		logging.Fatal("saving output", zap.String("file", *out), zap.Error(err))
	}
	logging.Info("image written",
		zap.String("file", *out), zap.Int("width", *width), zap.Int("height", *height))
}
