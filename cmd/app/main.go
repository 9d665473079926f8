package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"foodbridge/internal/config"
	"foodbridge/internal/mylogger"

	allocationservice "foodbridge/internal/allocation-service"
	authservice "foodbridge/internal/auth-service"
	deliveryservice "foodbridge/internal/delivery-service"
	orderservice "foodbridge/internal/order-service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: foodbridge <auth-service|allocation-service|order-service|delivery-service>")
		os.Exit(1)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mylog, err := mylogger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "auth-service":
		err = authservice.Execute(ctx, mylog, cfg)
	case "allocation-service":
		err = allocationservice.Execute(ctx, mylog, cfg)
	case "order-service":
		err = orderservice.Execute(ctx, mylog, cfg)
	case "delivery-service":
		err = deliveryservice.Execute(ctx, mylog, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown service %q\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		mylog.Error("service stopped with error", err)
		os.Exit(1)
	}
}
