package main

import (
	"os"
	"os/signal"
	"syscall"

	"schwarzesbrett/infra/grpc"
	"schwarzesbrett/infra/postgres"
	"schwarzesbrett/internal/container"
	"schwarzesbrett/pkg/config"

	"go.uber.org/zap"
)

func main() {
	appConfig := config.Read()
	logger := container.InitLogger(appConfig.LogLevel)
	defer logger.Sync()

	zap.L().Info("schwarzesbrett gRPC service starting...")

	deps, err := container.New(appConfig)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	grpcServer, err := grpc.NewServer(appConfig)
	if err != nil {
		zap.L().Fatal("Failed to create gRPC server", zap.Error(err))
	}

	listingService := grpc.NewListingService(
		deps.Repository.Ads(),
		postgres.AdSortColumns,
		deps.Repository,
		appConfig.ItemsPerPage,
	)
	grpc.RegisterListingServer(grpcServer.GetGRPCServer(), listingService)
	grpcServer.SetServing(grpc.ListingServiceDesc.ServiceName, true)

	go func() {
		if err := grpcServer.Start(); err != nil {
			zap.L().Error("Failed to start gRPC server", zap.Error(err))
			os.Exit(1)
		}
	}()

	gracefulShutdown(grpcServer)
}

func gracefulShutdown(grpcServer *grpc.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down gRPC server...")
	grpcServer.GracefulStop()
	zap.L().Info("gRPC server gracefully stopped")
}
