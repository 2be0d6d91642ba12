// Command visionnav-assets downloads and verifies the YOLOv3 model
// artifacts the VisionNav detector loads at startup: the network
// definition, the pretrained weights and the COCO class names.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mystichronicle/VisionNav/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.New(os.Stdout, os.Stderr).Run(ctx, os.Args[1:])
}
