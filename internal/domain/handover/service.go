package handover

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/frontdesk/internal/domain/asset"
	"github.com/clinicdesk/frontdesk/internal/domain/shift"
	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/blobstore"
	"github.com/clinicdesk/frontdesk/internal/platform/db"
	"github.com/clinicdesk/frontdesk/internal/platform/events"
)

const (
	archivePrefix = "handover-archive/"
	// publishTimeout bounds each handover event publish.
	publishTimeout = 2 * time.Second
)

// ShiftReader resolves the shifts a handover points at.
type ShiftReader interface {
	Get(ctx context.Context, id int64) (*shift.Shift, error)
}

type Options struct {
	// SeedPlaceholder stores a sample log entry when an export finds none.
	SeedPlaceholder bool
	// Location is the clinic time zone used for log_date and log_time.
	Location *time.Location
	// Archive, when set, receives an XLSX copy of the log before ClearAll.
	Archive blobstore.Store
	// Publisher receives a handover.logged event per written log entry.
	Publisher events.Publisher
	Now       func() time.Time
}

type Service struct {
	repo   Repository
	logs   LogRepository
	shifts ShiftReader
	tx     db.Transactor
	log    zerolog.Logger

	seedPlaceholder bool
	loc             *time.Location
	archive         blobstore.Store
	publisher       events.Publisher
	now             func() time.Time
}

func NewService(repo Repository, logs LogRepository, shifts ShiftReader, tx db.Transactor, logger zerolog.Logger, opts Options) *Service {
	s := &Service{
		repo:            repo,
		logs:            logs,
		shifts:          shifts,
		tx:              tx,
		log:             logger.With().Str("component", "handover").Logger(),
		seedPlaceholder: opts.SeedPlaceholder,
		loc:             opts.Location,
		archive:         opts.Archive,
		publisher:       opts.Publisher,
		now:             opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create stores the header and its asset links atomically, then writes the
// log entry. Once the header is committed, failures to read back the assets
// or to write the log are logged and do not fail the call.
func (s *Service) Create(ctx context.Context, in HandoverInput) (*Handover, error) {
	h := &Handover{
		FromShiftID:   in.FromShiftID,
		ToShiftID:     in.ToShiftID,
		HandoverNotes: in.HandoverNotes,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, h); err != nil {
			return err
		}
		return s.repo.LinkAssets(ctx, h.ID, in.AssetIDs)
	})
	if err != nil {
		return nil, err
	}
	if err := s.attachAssets(ctx, h); err != nil {
		s.log.Error().Err(err).Int64("handover_id", h.ID).Msg("handover assets not loaded after create")
		h.Assets = []*asset.Asset{}
	}

	if err := s.recordLog(ctx, h); err != nil {
		s.log.Error().Err(err).Int64("handover_id", h.ID).Msg("handover log entry not written")
	}
	return h, nil
}

// lookupShift returns nil for an absent or unknown shift.
func (s *Service) lookupShift(ctx context.Context, id *int64) (*shift.Shift, error) {
	if id == nil {
		return nil, nil
	}
	sh, err := s.shifts.Get(ctx, *id)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	return sh, err
}

func (s *Service) recordLog(ctx context.Context, h *Handover) error {
	from, err := s.lookupShift(ctx, h.FromShiftID)
	if err != nil {
		return fmt.Errorf("resolve from shift: %w", err)
	}
	to, err := s.lookupShift(ctx, h.ToShiftID)
	if err != nil {
		return fmt.Errorf("resolve to shift: %w", err)
	}

	entry := newLogEntry(h, from, to, s.now().In(s.loc))
	if err := s.logs.CreateLog(ctx, entry); err != nil {
		return err
	}
	s.log.Info().Int64("handover_id", h.ID).Int64("log_id", entry.ID).Msg("handover log entry written")

	evt := events.Event{
		Type:       events.TypeHandoverLogged,
		Key:        strconv.FormatInt(h.ID, 10),
		OccurredAt: entry.CreatedAt,
		Payload:    entry,
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, evt); err != nil {
		s.log.Warn().Err(err).Int64("handover_id", h.ID).Msg("handover event not published")
	}
	return nil
}

func (s *Service) attachAssets(ctx context.Context, items ...*Handover) error {
	ids := make([]int64, len(items))
	for i, h := range items {
		ids[i] = h.ID
	}
	linked, err := s.repo.AssetsFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, h := range items {
		h.Assets = linked[h.ID]
		if h.Assets == nil {
			h.Assets = []*asset.Asset{}
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Handover, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachAssets(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) List(ctx context.Context) ([]*Handover, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []*Handover{}, nil
	}
	if err := s.attachAssets(ctx, items...); err != nil {
		return nil, err
	}
	return items, nil
}

// Update rewrites the header and replaces the whole asset set. The log
// entry written at creation is left as it was.
func (s *Service) Update(ctx context.Context, id int64, in HandoverInput) (*Handover, error) {
	var h *Handover
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if h, err = s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		h.FromShiftID = in.FromShiftID
		h.ToShiftID = in.ToShiftID
		h.HandoverNotes = in.HandoverNotes
		if err := s.repo.Update(ctx, h); err != nil {
			return err
		}
		if err := s.repo.UnlinkAssets(ctx, id); err != nil {
			return err
		}
		return s.repo.LinkAssets(ctx, id, in.AssetIDs)
	})
	if err != nil {
		return nil, err
	}
	if err := s.attachAssets(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// rows converts every stored log entry, skipping rows that cannot be read.
func (s *Service) rows(ctx context.Context) ([]ExportRow, error) {
	records, err := s.logs.ListLogs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ExportRow, 0, len(records))
	for _, rec := range records {
		row, err := rec.exportRow()
		if err != nil {
			s.log.Warn().Err(err).Int64("log_id", rec.ID).Msg("skipping handover log row")
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// Export returns every log entry newest first. With SeedPlaceholder set an
// empty log first receives a sample entry.
func (s *Service) Export(ctx context.Context) (*ExportResult, error) {
	if s.seedPlaceholder {
		n, err := s.logs.CountLogs(ctx)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			if err := s.logs.CreateLog(ctx, placeholderEntry()); err != nil {
				return nil, err
			}
			s.log.Info().Msg("handover log empty, placeholder entry stored")
		}
	}
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Data: rows, Total: len(rows), Success: true}, nil
}

// ExportXLSX renders the same rows as Export as a workbook.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	res, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	data, err := WriteXLSX(res.Data)
	if err != nil {
		return nil, apperr.Unexpected(err, "render handover export")
	}
	return data, nil
}

// ClearAll deletes every link row, handover and log entry. When an archive
// store is configured the log is copied there first; a failed copy aborts
// the clear.
func (s *Service) ClearAll(ctx context.Context) (*ClearResult, error) {
	res := &ClearResult{}
	if s.archive != nil {
		key, err := s.archiveLog(ctx)
		if err != nil {
			return nil, apperr.Unexpected(err, "archive handover log")
		}
		res.ArchiveKey = key
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if res.DeletedHandovers, err = s.repo.DeleteAll(ctx); err != nil {
			return err
		}
		res.DeletedLogs, err = s.logs.DeleteAllLogs(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Message = fmt.Sprintf("Удалено %d передач смен и %d логов", res.DeletedHandovers, res.DeletedLogs)
	s.log.Info().
		Int("deleted_handovers", res.DeletedHandovers).
		Int("deleted_logs", res.DeletedLogs).
		Str("archive_key", res.ArchiveKey).
		Msg("handovers cleared")
	return res, nil
}

func (s *Service) archiveLog(ctx context.Context) (string, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return "", err
	}
	data, err := WriteXLSX(rows)
	if err != nil {
		return "", err
	}
	key := archivePrefix + s.now().UTC().Format("20060102T150405Z") + ".xlsx"
	if _, err := s.archive.Put(ctx, key, xlsxContentType, data); err != nil {
		return "", err
	}
	return key, nil
}
