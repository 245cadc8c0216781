package data

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"HotelGateway/internal/model"
	pkgerrors "HotelGateway/pkg/errors"
	pkglog "HotelGateway/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

const (
	incidentBuffer       = 1000
	incidentWriteTries   = 3
	incidentRetryBackoff = 100 * time.Millisecond
)

// Incident is the GORM model for the saga_incidents table.
type Incident struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	Kind           string    `gorm:"column:kind;type:varchar(40);not null;index"`
	Username       string    `gorm:"column:username;type:varchar(80);not null;index"`
	ReservationUID string    `gorm:"column:reservation_uid;type:varchar(36)"`
	PaymentUID     string    `gorm:"column:payment_uid;type:varchar(36)"`
	Details        string    `gorm:"column:details;type:json"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (Incident) TableName() string {
	return "saga_incidents"
}

// IncidentLog records inconsistencies the sagas leave behind. Every incident
// is logged and counted; when MySQL is configured it is also persisted by a
// background writer.
type IncidentLog struct {
	db      *gorm.DB
	ch      chan *Incident
	metrics *Metrics
	logger  *pkglog.LogHelper
	wg      sync.WaitGroup

	// mu guards sends on ch against its close.
	mu     sync.Mutex
	closed bool
}

// NewIncidentLog starts the background writer. The cleanup function drains
// pending rows before returning.
func NewIncidentLog(d *Data, metrics *Metrics, logger log.Logger) (*IncidentLog, func()) {
	l := &IncidentLog{
		db:      d.DB(),
		metrics: metrics,
		logger:  pkglog.NewLogHelper(logger),
	}
	if l.db == nil {
		return l, func() {}
	}

	l.ch = make(chan *Incident, incidentBuffer)
	l.wg.Add(1)
	go l.run()

	return l, func() {
		l.mu.Lock()
		if !l.closed {
			l.closed = true
			close(l.ch)
		}
		l.mu.Unlock()
		l.wg.Wait()
	}
}

// Record logs inc and queues it for persistence without blocking.
func (l *IncidentLog) Record(_ context.Context, inc *model.Incident) {
	l.metrics.ObserveIncident(inc.Kind)
	l.logger.Incident(inc.Kind,
		"username", inc.Username,
		"reservation_uid", inc.ReservationUID,
		"payment_uid", inc.PaymentUID,
		"details", inc.Details)

	if l.ch == nil {
		return
	}

	row := &Incident{
		Kind:           inc.Kind,
		Username:       inc.Username,
		ReservationUID: inc.ReservationUID,
		PaymentUID:     inc.PaymentUID,
	}
	if len(inc.Details) > 0 {
		details, err := json.Marshal(inc.Details)
		if err != nil {
			l.logger.Errorw("msg", "failed to marshal incident details", "kind", inc.Kind, "error", err)
			return
		}
		row.Details = string(details)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.logger.Warnw("msg", "incident log closed, dropping row", "kind", inc.Kind, "username", inc.Username)
		return
	}
	select {
	case l.ch <- row:
	default:
		l.logger.Warnw("msg", "incident channel full, dropping row", "kind", inc.Kind, "username", inc.Username)
	}
}

func (l *IncidentLog) run() {
	defer l.wg.Done()
	for row := range l.ch {
		l.write(row)
	}
}

// write inserts row, retrying transient database errors.
func (l *IncidentLog) write(row *Incident) {
	var err error
	for attempt := 1; attempt <= incidentWriteTries; attempt++ {
		err = l.db.WithContext(context.Background()).Create(row).Error
		if err == nil {
			return
		}
		if !pkgerrors.IsRetryable(err) {
			break
		}
		time.Sleep(time.Duration(attempt) * incidentRetryBackoff)
	}
	l.logger.Errorw("msg", "failed to persist incident",
		"kind", row.Kind,
		"username", row.Username,
		"error", err)
}
