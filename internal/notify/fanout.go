package notify

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/domain"
	"github.com/divyanshu-1/RoadX/pkg/e"

	"github.com/google/uuid"
)

// Fanout dispatches push and SMS alerts to a ranked responder list through a
// bounded worker pool. Per-recipient failures are recorded, never propagated;
// the call blocks until every send has settled.
type Fanout struct {
	push     PushSender
	sms      SMSSender
	poolSize int
	logger   *slog.Logger
}

func NewFanout(push PushSender, sms SMSSender, poolSize int, logger *slog.Logger) *Fanout {
	if poolSize < 1 {
		poolSize = 1
	}
	return &Fanout{
		push:     push,
		sms:      sms,
		poolSize: poolSize,
		logger:   logger,
	}
}

type sendJob struct {
	responderID string
	channel     string
	send        func(context.Context) error
}

func (f *Fanout) Notify(ctx context.Context, responders []domain.NearbyResponder, inc *domain.Incident) (domain.FanoutResult, error) {
	result := domain.FanoutResult{Failed: make(map[string]string)}

	// The only failure mode of the call itself: a malformed payload caught
	// before any dispatch begins.
	if inc == nil || inc.ID == uuid.Nil || inc.Type == "" {
		return result, fmt.Errorf("notify.Fanout.Notify: %w", e.ErrInvalidArgument)
	}

	if f.sms == nil {
		f.logger.Info("SMS channel unconfigured, skipping SMS alerts")
	}

	jobs := make([]sendJob, 0, 2*len(responders))
	attempted := make(map[string]bool, len(responders))
	for _, r := range responders {
		r := r
		if r.PushToken != "" && f.push != nil {
			msg := pushMessage(r, inc)
			jobs = append(jobs, sendJob{
				responderID: r.ID,
				channel:     "push",
				send:        func(ctx context.Context) error { return f.push.Send(ctx, msg) },
			})
			attempted[r.ID] = true
		}
		if r.Phone != "" && f.sms != nil {
			body := smsBody(r, inc)
			to := r.Phone
			jobs = append(jobs, sendJob{
				responderID: r.ID,
				channel:     "sms",
				send:        func(ctx context.Context) error { return f.sms.Send(ctx, to, body) },
			})
			attempted[r.ID] = true
		}
		if !attempted[r.ID] {
			f.logger.Debug("responder has no contact channels, skipped", slog.String("responder_id", r.ID))
		}
	}

	var (
		mu       sync.Mutex
		failures = make(map[string][]string)
	)

	jobCh := make(chan sendJob)
	var wg sync.WaitGroup
	for i := 0; i < f.poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := job.send(ctx); err != nil {
					f.logger.Error("notification send failed",
						slog.String("responder_id", job.responderID),
						slog.String("channel", job.channel),
						slog.Any("error", err),
					)
					mu.Lock()
					failures[job.responderID] = append(failures[job.responderID], fmt.Sprintf("%s: %v", job.channel, err))
					mu.Unlock()
				}
			}
		}()
	}
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	for _, r := range responders {
		if !attempted[r.ID] {
			continue
		}
		if reasons, ok := failures[r.ID]; ok {
			sort.Strings(reasons)
			result.Failed[r.ID] = strings.Join(reasons, "; ")
			continue
		}
		result.Succeeded = append(result.Succeeded, r.ID)
	}

	f.logger.Info("fanout complete",
		slog.Int("responders", len(responders)),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)),
	)

	return result, nil
}

func pushMessage(r domain.NearbyResponder, inc *domain.Incident) domain.PushMessage {
	return domain.PushMessage{
		Token: r.PushToken,
		Title: fmt.Sprintf("Emergency: %s", inc.Type),
		Body:  fmt.Sprintf("Incident reported at %.4f, %.4f", inc.Lat, inc.Lng),
		Data: map[string]string{
			"type":         "incident",
			"incidentId":   inc.ID.String(),
			"incidentType": inc.Type,
			"lat":          strconv.FormatFloat(inc.Lat, 'f', -1, 64),
			"lng":          strconv.FormatFloat(inc.Lng, 'f', -1, 64),
			"vehicleId":    inc.VehicleID,
		},
	}
}

func smsBody(r domain.NearbyResponder, inc *domain.Incident) string {
	distanceText := "unknown distance"
	if r.DistanceKM >= 0 {
		distanceText = fmt.Sprintf("%.2fkm", r.DistanceKM)
	}
	return fmt.Sprintf(
		"EMERGENCY ALERT: %s reported. Location: %v, %v. Distance: %s. Incident ID: %s",
		inc.Type, inc.Lat, inc.Lng, distanceText, inc.ID,
	)
}
