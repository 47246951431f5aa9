package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"matchbook/internal/net"
	"matchbook/internal/sim"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	address := flag.String("address", "0.0.0.0", "address to listen on")
	port := flag.Int("port", 9001, "port to listen on")
	seed := flag.Int64("seed", 1, "seed for the pending-order permutation")
	startTime := flag.Int64("start-time", 0, "simulated start time")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	simulator := sim.NewSimulator(*startTime, *seed)
	srv := net.New(*address, *port, simulator)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	srv.Shutdown()
}
