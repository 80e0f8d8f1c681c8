// services/portal/handlers/sessions.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/example/payment-portal/internal/session"
	m "github.com/example/payment-portal/pkg/metrics"
	"github.com/example/payment-portal/services/portal/queue"
)

const (
	reasonBadJSON         = "bad_json"
	reasonInvalidInput    = "invalid_input"
	reasonSessionNotFound = "session_not_found"

	publishTimeout = 5 * time.Second
)

var validate = validator.New()

var tracer = otel.Tracer("portal-http")

type Publisher interface {
	Publish(ctx context.Context, key, payload []byte) error
}

type Deps struct {
	Sessions *session.Registry
	Bus      Publisher // nil disables completion events
	Log      *slog.Logger
	// Pending tracks in-flight completion events when set; main waits on it
	// before closing the bus.
	Pending *sync.WaitGroup
}

func Register(r *mux.Router, d Deps) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(TraceContext)
	api.HandleFunc("/sessions", CreateSessionHandler(d)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", GetSessionHandler(d)).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/payment-errors", PaymentErrorsHandler(d)).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/pay", PayHandler(d)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/complete", CompleteHandler(d)).Methods(http.MethodPost)
}

// TraceContext continues the caller's trace from its request headers
// (traceparent), so spans and published events join it.
func TraceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CreateSessionHandler takes the payment page's own query string as the
// request query string.
func CreateSessionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "CreateSession")
		defer span.End()

		id, s, _ := d.Sessions.Open(ctx, session.ReadParams(r.URL.Query()))
		span.SetAttributes(attribute.String("session.id", id))

		writeJSON(w, http.StatusCreated, SessionOut{ID: id, Session: s.Snapshot()})
	}
}

func GetSessionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := lookupSession(w, r, d)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, SessionOut{ID: id, Session: s.Snapshot()})
	}
}

func PaymentErrorsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := lookupSession(w, r, d)
		if !ok {
			return
		}
		var in PaymentErrorsIn
		if !decode(w, r, &in) {
			return
		}
		s.PaymentSetErrors(in.Errors)
		writeJSON(w, http.StatusOK, SessionOut{ID: id, Session: s.Snapshot()})
	}
}

func PayHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := lookupSession(w, r, d)
		if !ok {
			return
		}
		s.Pay()
		writeJSON(w, http.StatusOK, SessionOut{ID: id, Session: s.Snapshot()})
	}
}

func CompleteHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "CompletePayment")
		defer span.End()

		id, s, ok := lookupSession(w, r, d)
		if !ok {
			return
		}
		var in CompleteIn
		if !decode(w, r, &in) {
			return
		}

		changed := s.Complete(session.Completion{
			Reference:     in.Reference,
			Status:        in.Status,
			PaymentMethod: in.PaymentMethod,
		})
		snap := s.Snapshot()
		span.SetAttributes(
			attribute.String("session.id", id),
			attribute.String("payment.status", string(snap.Result.Status)),
		)
		if !changed {
			d.Log.Info("repeated completion ignored", "session_id", id, "reference", in.Reference)
			writeJSON(w, http.StatusOK, SessionOut{ID: id, Session: snap})
			return
		}

		m.IncResult(string(snap.Result.Status))
		d.Log.Info("payment completed", "session_id", id, "status", snap.Result.Status, "reference", in.Reference)

		if d.Bus != nil {
			// detached: the payer may close the page as soon as this returns
			pubCtx := context.WithoutCancel(ctx)
			if d.Pending != nil {
				d.Pending.Add(1)
			}
			go func() {
				if d.Pending != nil {
					defer d.Pending.Done()
				}
				publishCompleted(pubCtx, d, id, snap)
			}()
		}
		writeJSON(w, http.StatusOK, SessionOut{ID: id, Session: snap})
	}
}

// publishCompleted is best effort. Failures are logged and counted only.
func publishCompleted(ctx context.Context, d Deps, id string, snap session.Snapshot) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	payload, err := json.Marshal(queue.PaymentCompleted{
		SessionID:     id,
		Reference:     snap.Result.Reference,
		Status:        string(snap.Result.Status),
		RawStatus:     snap.Result.RawStatus,
		PaymentMethod: snap.Result.PaymentMethod,
		Amount:        snap.Payment.Amount,
		Currency:      snap.Portal.Recipient.Currency,
		PortalCode:    snap.Portal.PortalCode,
		CallbackURL:   snap.Payment.CallbackURL,
		CallbackID:    snap.Payment.CallbackID,
		Parameters:    snap.Payment.Parameters,
	})
	if err != nil {
		d.Log.Error("encode completion event", "session_id", id, "err", err)
		m.IncPublish("failed")
		return
	}
	if err := d.Bus.Publish(ctx, []byte(id), payload); err != nil {
		d.Log.Error("publish completion event", "session_id", id, "err", err)
		m.IncPublish("failed")
		return
	}
	m.IncPublish("ok")
}

func lookupSession(w http.ResponseWriter, r *http.Request, d Deps) (string, *session.Store, bool) {
	id := mux.Vars(r)["id"]
	s, ok := d.Sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorOut{Status: "FAILED", Reason: reasonSessionNotFound})
		return id, nil, false
	}
	return id, s, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorOut{Status: "FAILED", Reason: reasonBadJSON})
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorOut{Status: "FAILED", Reason: reasonInvalidInput})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
