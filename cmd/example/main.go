// Command example demonstrates seeding a fleet from a handful of node
// descriptors and picking the ideal one. It is not part of the core
// library surface; it exists only to exercise the ambient config/logging
// stack in a runnable form.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	anchorage "github.com/Deivu/Anchorage"
	"github.com/Deivu/Anchorage/config"
	"github.com/Deivu/Anchorage/logging"
)

func main() {
	logger := logging.NewLoggerWithService("anchorage-example")
	config.LoadEnv(logger)

	userID, err := strconv.ParseUint(config.GetEnv("ANCHORAGE_USER_ID", "1"), 10, 64)
	if err != nil {
		logger.WithError(err).Fatal("invalid ANCHORAGE_USER_ID")
	}

	fleet := anchorage.New(anchorage.Options{Logger: logger})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	descriptors := []anchorage.NodeOptions{
		{
			Name: config.GetEnv("ANCHORAGE_NODE_NAME", "main"),
			Host: config.GetEnv("ANCHORAGE_NODE_HOST", "localhost"),
			Port: 2333,
			Auth: config.GetEnv("ANCHORAGE_NODE_AUTH", "youshallnotpass"),
		},
	}

	if err := fleet.Start(ctx, userID, descriptors); err != nil {
		logger.WithError(err).Fatal("failed to start fleet")
	}

	ideal, err := fleet.GetIdealNode(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to select an ideal node")
	}

	logger.WithField("node", ideal.Name).Info("selected ideal node")
	os.Exit(0)
}
