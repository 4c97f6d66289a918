package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"go-leech-bot/bot"
	"go-leech-bot/downloader"
)

// runDownloadCLI downloads a single URL to the current directory, rendering
// progress on the terminal. It exercises the same engine as the bot without
// any Telegram wiring.
func runDownloadCLI(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: go-leech-bot get <url>")
		return 2
	}

	rawURL := args[0]
	if err := bot.ValidateURL(rawURL); err != nil {
		fmt.Fprintf(os.Stderr, "invalid URL: %v\n", err)
		return 2
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	engine := downloader.NewEngine(downloader.EngineOptions{}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bar := progressbar.NewOptions64(100,
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("Downloading"),
	)

	path, err := engine.Download(ctx, uuid.NewString(), downloader.Request{URL: rawURL}, func(percent int) {
		bar.Set(percent)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "download failed: %v\n", err)
		return 1
	}

	dest := filepath.Base(path)
	size, err := moveArtifact(path, dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to place file: %v\n", err)
		return 1
	}

	fmt.Printf("Saved %s (%s)\n", dest, humanize.IBytes(uint64(size)))
	return 0
}

// moveArtifact copies the completed artifact into the working directory and
// releases the temp copy. A plain copy avoids cross-device rename failures.
func moveArtifact(src, dest string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}

	size, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return 0, err
	}

	downloader.RemoveArtifact(src)
	return size, nil
}
