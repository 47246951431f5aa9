package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	netcli "matchbook/internal/net"

	"github.com/google/uuid"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the simulator server")
	action := flag.String("action", "snapshot", "action: place-limit, place-market, cancel, submit, advance, snapshot, level1, level2")

	orderID := flag.String("order-id", "", "order id (place-limit, place-market, cancel)")
	traderID := flag.String("trader-id", "", "trader id (place-limit, place-market)")
	side := flag.String("side", "BUY", "BUY or SELL (place-limit, place-market)")
	quantity := flag.Int64("quantity", 0, "order quantity (place-limit, place-market)")
	price := flag.String("price", "", "limit price (place-limit)")
	delta := flag.Int64("delta", 0, "time delta (advance)")
	depth := flag.Int("depth", 10, "depth (level2)")

	flag.Parse()

	// A caller that doesn't care to track its own order id gets a
	// fresh one generated here, client-side, per the engine's
	// contract that order_id is assigned by the submitter, not by the
	// exchange.
	if *orderID == "" {
		generated := uuid.New().String()
		orderID = &generated
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	var writeErr error
	switch strings.ToLower(*action) {
	case "place-limit":
		writeErr = netcli.WriteFrame(conn, netcli.PlaceLimitOrder, netcli.PlaceLimitOrderBody{
			OrderID:  *orderID,
			TraderID: *traderID,
			Side:     strings.ToUpper(*side),
			Quantity: *quantity,
			Price:    *price,
		})
	case "place-market":
		writeErr = netcli.WriteFrame(conn, netcli.PlaceMarketOrder, netcli.PlaceMarketOrderBody{
			OrderID:  *orderID,
			TraderID: *traderID,
			Side:     strings.ToUpper(*side),
			Quantity: *quantity,
		})
	case "cancel":
		writeErr = netcli.WriteFrame(conn, netcli.CancelOrder, netcli.CancelOrderBody{OrderID: *orderID})
	case "submit":
		writeErr = netcli.WriteFrame(conn, netcli.SubmitPendingOrders, struct{}{})
	case "advance":
		writeErr = netcli.WriteFrame(conn, netcli.AdvanceTime, netcli.AdvanceTimeBody{Delta: *delta})
	case "snapshot":
		writeErr = netcli.WriteFrame(conn, netcli.QuerySnapshot, struct{}{})
	case "level1":
		writeErr = netcli.WriteFrame(conn, netcli.QueryLevel1, struct{}{})
	case "level2":
		writeErr = netcli.WriteFrame(conn, netcli.QueryLevel2, netcli.QueryLevel2Body{Depth: *depth})
	default:
		fmt.Printf("unknown action: %s\n", *action)
		os.Exit(1)
	}
	if writeErr != nil {
		log.Fatalf("failed to send request: %v", writeErr)
	}

	reportType, body, err := netcli.ReadReport(conn)
	if err != nil {
		log.Fatalf("failed to read report: %v", err)
	}
	fmt.Printf("[%d] %s\n", reportType, string(body))
}
