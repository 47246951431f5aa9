package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"matchbook/internal/book"
	"matchbook/internal/sim"
	"matchbook/internal/wp"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"
)

const (
	defaultNWorkers    = 10
	defaultConnTimeout = 5 * time.Second
)

var ErrUnknownSide = errors.New("unknown side")

// inbound links one received frame to the connection it arrived on,
// so the single dispatch loop below can write the reply back to the
// right peer.
type inbound struct {
	conn  net.Conn
	frame Frame
}

// Server owns a sim.Simulator and a TCP listener that accepts orders
// for it. Every frame is processed by one goroutine (dispatch), which
// is what lets Simulator stay unsynchronized even with many
// concurrently connected clients — the same role the teacher's
// sessionHandler plays for its engine.
type Server struct {
	address string
	port    int
	sim     *sim.Simulator

	pool    *wp.Pool
	cancel  context.CancelFunc
	inbound chan inbound
}

func New(address string, port int, simulator *sim.Simulator) *Server {
	return &Server{
		address: address,
		port:    port,
		sim:     simulator,
		pool:    wp.New(defaultNWorkers),
		inbound: make(chan inbound, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("unable to start listener: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	s.pool.Run(t, s.handleConnection)
	t.Go(func() error {
		return s.dispatch(t)
	})

	log.Info().Str("address", listener.Addr().String()).Msg("server running")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("new client connected")
			s.pool.Add(conn)
		}
	}
}

// handleConnection reads one frame off conn and hands it to dispatch,
// which re-queues the connection after replying so a free worker reads
// the next frame.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return fmt.Errorf("unexpected task type %T", task)
	}

	if err := conn.SetReadDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Msg("failed setting read deadline")
		return nil
	}

	frame, err := ReadFrame(conn)
	if err != nil {
		log.Debug().Err(err).Str("address", conn.RemoteAddr().String()).Msg("connection closed")
		conn.Close()
		return nil
	}

	select {
	case <-t.Dying():
		return nil
	case s.inbound <- inbound{conn: conn, frame: frame}:
	}
	return nil
}

// dispatch is the sole goroutine that ever touches s.sim, mirroring
// the teacher's single sessionHandler reading off clientMessages.
func (s *Server) dispatch(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case in := <-s.inbound:
			s.handleFrame(in.conn, in.frame)
			s.pool.Add(in.conn)
		}
	}
}

func (s *Server) handleFrame(conn net.Conn, frame Frame) {
	switch frame.Type {
	case Heartbeat:
		s.reply(conn, WriteReport(conn, Ack, struct{}{}))

	case PlaceLimitOrder:
		var body PlaceLimitOrderBody
		if err := unmarshalOrFail(conn, frame.Body, &body); err != nil {
			return
		}
		side, err := parseSide(body.Side)
		if err != nil {
			s.reportError(conn, err)
			return
		}
		price, err := decimal.NewFromString(body.Price)
		if err != nil {
			s.reportError(conn, err)
			return
		}
		err = s.sim.PlaceLimitOrder(body.OrderID, body.TraderID, side, body.Quantity, price)
		s.reportAckOrError(conn, err)

	case PlaceMarketOrder:
		var body PlaceMarketOrderBody
		if err := unmarshalOrFail(conn, frame.Body, &body); err != nil {
			return
		}
		side, err := parseSide(body.Side)
		if err != nil {
			s.reportError(conn, err)
			return
		}
		err = s.sim.PlaceMarketOrder(body.OrderID, body.TraderID, side, body.Quantity)
		s.reportAckOrError(conn, err)

	case CancelOrder:
		var body CancelOrderBody
		if err := unmarshalOrFail(conn, frame.Body, &body); err != nil {
			return
		}
		err := s.sim.CancelOrder(body.OrderID)
		s.reportAckOrError(conn, err)

	case SubmitPendingOrders:
		s.sim.SubmitPendingOrders()
		s.reply(conn, WriteReport(conn, TradeReport, s.sim.TradeLogs()))

	case AdvanceTime:
		var body AdvanceTimeBody
		if err := unmarshalOrFail(conn, frame.Body, &body); err != nil {
			return
		}
		err := s.sim.AdvanceTime(body.Delta)
		s.reportAckOrError(conn, err)

	case QuerySnapshot:
		s.reply(conn, WriteReport(conn, SnapshotReport, s.sim.CurrentSnapshot().ToDict()))

	case QueryLevel1:
		s.reply(conn, WriteReport(conn, Level1Report, s.sim.CurrentLevel1Data().ToDict()))

	case QueryLevel2:
		var body QueryLevel2Body
		if err := unmarshalOrFail(conn, frame.Body, &body); err != nil {
			return
		}
		s.reply(conn, WriteReport(conn, Level2Report, s.sim.CurrentLevel2Data(body.Depth).ToDict()))

	default:
		s.reportError(conn, ErrInvalidMessageType)
	}
}

func (s *Server) reportAckOrError(conn net.Conn, err error) {
	if err != nil {
		s.reportError(conn, err)
		return
	}
	s.reply(conn, WriteReport(conn, Ack, struct{}{}))
}

func (s *Server) reportError(conn net.Conn, err error) {
	s.reply(conn, WriteReport(conn, ErrorReport, ErrorBody{Error: err.Error()}))
}

func (s *Server) reply(conn net.Conn, err error) {
	if err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error writing reply")
	}
}

func unmarshalOrFail(conn net.Conn, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		_ = WriteReport(conn, ErrorReport, ErrorBody{Error: err.Error()})
		return err
	}
	return nil
}

func parseSide(s string) (book.Side, error) {
	switch s {
	case "BUY":
		return book.Buy, nil
	case "SELL":
		return book.Sell, nil
	default:
		return 0, ErrUnknownSide
	}
}
