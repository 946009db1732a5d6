package handover

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/frontdesk/internal/domain/asset"
	"github.com/clinicdesk/frontdesk/internal/domain/shift"
	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/blobstore"
	"github.com/clinicdesk/frontdesk/internal/platform/events"
)

// -- Mock Repositories --

type link struct{ handoverID, assetID int64 }

type mockRepo struct {
	items   map[int64]*Handover
	links   []link
	catalog map[int64]*asset.Asset
	nextID  int64
	clock   time.Time

	assetsErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		items: make(map[int64]*Handover),
		catalog: map[int64]*asset.Asset{
			1: {ID: 1, Title: "Billing dispute", AssetType: asset.TypeCase, Description: "Invoice 118", Status: asset.StatusActive},
			2: {ID: 2, Title: "Printer migration", AssetType: asset.TypeChangeManagement, Description: "Front desk", Status: asset.StatusOnHold},
			3: {ID: 3, Title: "VIP complaint", AssetType: asset.TypeOrangeCase, Description: "Escalated", Status: asset.StatusActive},
		},
		clock: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepo) Create(_ context.Context, h *Handover) error {
	m.nextID++
	m.clock = m.clock.Add(time.Minute)
	h.ID = m.nextID
	h.CreatedAt = m.clock
	cp := *h
	m.items[h.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Handover, error) {
	h, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Handover not found")
	}
	cp := *h
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, h *Handover) error {
	if _, ok := m.items[h.ID]; !ok {
		return apperr.NotFound("Handover not found")
	}
	cp := *h
	m.items[h.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*Handover, error) {
	var out []*Handover
	for _, h := range m.items {
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRepo) LinkAssets(_ context.Context, handoverID int64, assetIDs []int64) error {
	for _, id := range assetIDs {
		m.links = append(m.links, link{handoverID, id})
	}
	return nil
}

func (m *mockRepo) UnlinkAssets(_ context.Context, handoverID int64) error {
	kept := m.links[:0]
	for _, l := range m.links {
		if l.handoverID != handoverID {
			kept = append(kept, l)
		}
	}
	m.links = kept
	return nil
}

func (m *mockRepo) AssetsFor(_ context.Context, handoverIDs []int64) (map[int64][]*asset.Asset, error) {
	if m.assetsErr != nil {
		return nil, m.assetsErr
	}
	want := make(map[int64]bool)
	for _, id := range handoverIDs {
		want[id] = true
	}
	out := make(map[int64][]*asset.Asset)
	for _, l := range m.links {
		a, ok := m.catalog[l.assetID]
		if want[l.handoverID] && ok {
			out[l.handoverID] = append(out[l.handoverID], a)
		}
	}
	return out, nil
}

func (m *mockRepo) DeleteAll(_ context.Context) (int, error) {
	n := len(m.items)
	m.items = make(map[int64]*Handover)
	m.links = nil
	return n, nil
}

type mockLogs struct {
	records []*LogRecord
	nextID  int64
	fail    error
	clock   time.Time
}

func (m *mockLogs) CreateLog(_ context.Context, e *LogEntry) error {
	if m.fail != nil {
		return m.fail
	}
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	e.ID = m.nextID
	e.CreatedAt = m.clock
	str := func(s string) *string { return &s }
	m.records = append(m.records, &LogRecord{
		ID: e.ID, LogDate: str(e.LogDate), LogTime: str(e.LogTime),
		FromShiftUser: str(e.FromShiftUser), FromShiftTime: str(e.FromShiftTime),
		ToShiftUser: str(e.ToShiftUser), ToShiftTime: str(e.ToShiftTime),
		HandoverNotes: str(e.HandoverNotes), AssetsInfo: str(e.AssetsInfo),
		CreatedAt: e.CreatedAt,
	})
	return nil
}

func (m *mockLogs) ListLogs(_ context.Context) ([]*LogRecord, error) {
	out := make([]*LogRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *mockLogs) CountLogs(_ context.Context) (int, error) { return len(m.records), nil }

func (m *mockLogs) DeleteAllLogs(_ context.Context) (int, error) {
	n := len(m.records)
	m.records = nil
	return n, nil
}

type mockShifts map[int64]*shift.Shift

func (m mockShifts) Get(_ context.Context, id int64) (*shift.Shift, error) {
	s, ok := m[id]
	if !ok {
		return nil, apperr.NotFound("Shift not found")
	}
	return s, nil
}

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type recordingPublisher struct {
	events   []events.Event
	fail     error
	deadline time.Time
	ctxErr   error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.deadline, _ = ctx.Deadline()
	p.ctxErr = ctx.Err()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type failingStore struct{}

func (failingStore) Put(context.Context, string, string, []byte) (*blobstore.Object, error) {
	return nil, errors.New("bucket unavailable")
}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, blobstore.ErrObjectNotFound
}

var fixedNow = time.Date(2025, 3, 1, 21, 5, 30, 0, time.UTC)

type fixture struct {
	svc  *Service
	repo *mockRepo
	logs *mockLogs
	pub  *recordingPublisher
	tx   *fakeTx
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		repo: newMockRepo(),
		logs: &mockLogs{clock: fixedNow},
		pub:  &recordingPublisher{},
		tx:   &fakeTx{},
	}
	shifts := mockShifts{
		10: {ID: 10, UserName: "Anna Petrova", StartTime: "09:00", EndTime: "21:00"},
		11: {ID: 11, UserName: "Boris Orlov", StartTime: "21:00", EndTime: "09:00"},
	}
	if opts.Publisher == nil {
		opts.Publisher = f.pub
	}
	opts.Now = func() time.Time { return fixedNow }
	f.svc = NewService(f.repo, f.logs, shifts, f.tx, zerolog.Nop(), opts)
	return f
}

func int64Ptr(v int64) *int64 { return &v }

func assetIDs(h *Handover) []int64 {
	var ids []int64
	for _, a := range h.Assets {
		ids = append(ids, a.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestCreate_LinksAssetsAndWritesLog(t *testing.T) {
	f := newFixture(Options{})
	h, err := f.svc.Create(context.Background(), HandoverInput{
		FromShiftID:   int64Ptr(10),
		ToShiftID:     int64Ptr(11),
		HandoverNotes: "Two open cases",
		AssetIDs:      []int64{1, 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := assetIDs(h); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("unexpected assets: %v", got)
	}
	if f.tx.calls != 1 {
		t.Errorf("expected header and links in one transaction, got %d", f.tx.calls)
	}

	if len(f.logs.records) != 1 {
		t.Fatalf("expected one log entry, got %d", len(f.logs.records))
	}
	row, err := f.logs.records[0].exportRow()
	if err != nil {
		t.Fatalf("log row unreadable: %v", err)
	}
	want := ExportRow{
		ID:            1,
		Date:          "2025-03-01",
		Time:          "21:05:30",
		FromShiftUser: "Anna Petrova",
		FromShiftTime: "09:00-21:00",
		ToShiftUser:   "Boris Orlov",
		ToShiftTime:   "21:00-09:00",
		HandoverNotes: "Two open cases",
		AssetsInfo:    "Billing dispute (CASE): Invoice 118; VIP complaint (ORANGE_CASE): Escalated",
	}
	if row != want {
		t.Errorf("unexpected log row:\n got %+v\nwant %+v", row, want)
	}

	if len(f.pub.events) != 1 || f.pub.events[0].Type != events.TypeHandoverLogged || f.pub.events[0].Key != "1" {
		t.Errorf("expected one handover.logged event, got %+v", f.pub.events)
	}
}

func TestCreate_LogUsesClinicTimezone(t *testing.T) {
	f := newFixture(Options{Location: time.FixedZone("MSK", 3*60*60)})
	if _, err := f.svc.Create(context.Background(), HandoverInput{HandoverNotes: "late"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *f.logs.records[0].LogDate + " " + *f.logs.records[0].LogTime; got != "2025-03-02 00:05:30" {
		t.Errorf("expected clinic local time, got %s", got)
	}
}

func TestCreate_MissingShiftsAndAssets(t *testing.T) {
	f := newFixture(Options{})
	h, err := f.svc.Create(context.Background(), HandoverInput{
		ToShiftID:     int64Ptr(999),
		HandoverNotes: "Quiet night",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Assets == nil || len(h.Assets) != 0 {
		t.Errorf("expected empty asset list, got %v", h.Assets)
	}
	rec := f.logs.records[0]
	if *rec.FromShiftUser != notSpecified || *rec.ToShiftTime != notSpecified {
		t.Errorf("expected placeholders for missing shifts, got %s / %s", *rec.FromShiftUser, *rec.ToShiftTime)
	}
	if *rec.AssetsInfo != noAssets {
		t.Errorf("expected no-assets sentinel, got %s", *rec.AssetsInfo)
	}
}

func TestCreate_LogFailureDoesNotFail(t *testing.T) {
	f := newFixture(Options{})
	f.logs.fail = errors.New("handover_logs is locked")

	h, err := f.svc.Create(context.Background(), HandoverInput{HandoverNotes: "n", AssetIDs: []int64{2}})
	if err != nil {
		t.Fatalf("expected handover to succeed, got %v", err)
	}
	if _, ok := f.repo.items[h.ID]; !ok {
		t.Error("expected handover to be stored")
	}
	if len(f.pub.events) != 0 {
		t.Error("expected no event without a log entry")
	}
}

func TestCreate_PublishFailureIsSwallowed(t *testing.T) {
	f := newFixture(Options{})
	f.pub.fail = errors.New("broker down")
	if _, err := f.svc.Create(context.Background(), HandoverInput{HandoverNotes: "n"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(f.logs.records) != 1 {
		t.Error("expected log entry despite publish failure")
	}
}

func TestCreate_PublishUsesOwnDeadline(t *testing.T) {
	f := newFixture(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := time.Now()
	if _, err := f.svc.Create(ctx, HandoverInput{HandoverNotes: "client went away"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.pub.ctxErr != nil {
		t.Errorf("publish context must not inherit request cancellation, got %v", f.pub.ctxErr)
	}
	if f.pub.deadline.IsZero() {
		t.Fatal("expected publish context to carry a deadline")
	}
	if limit := before.Add(publishTimeout + time.Second); f.pub.deadline.After(limit) {
		t.Errorf("publish deadline %v exceeds %v", f.pub.deadline, limit)
	}
	if len(f.pub.events) != 1 {
		t.Errorf("expected the event to be published, got %d", len(f.pub.events))
	}
}

func TestCreate_AssetReadFailureStillReturnsHandover(t *testing.T) {
	f := newFixture(Options{})
	f.repo.assetsErr = errors.New("handover_assets read timed out")

	h, err := f.svc.Create(context.Background(), HandoverInput{HandoverNotes: "kept", AssetIDs: []int64{1}})
	if err != nil {
		t.Fatalf("expected committed handover to be returned, got %v", err)
	}
	if h == nil || h.ID == 0 {
		t.Fatalf("expected stored handover, got %+v", h)
	}
	if h.Assets == nil || len(h.Assets) != 0 {
		t.Errorf("expected empty asset list, got %v", h.Assets)
	}
	if _, ok := f.repo.items[h.ID]; !ok || len(f.repo.links) != 1 {
		t.Error("expected header and link rows committed")
	}
	if len(f.logs.records) != 1 {
		t.Error("expected log entry to be written")
	}
}

func TestCreate_DuplicateAssetIDsKept(t *testing.T) {
	f := newFixture(Options{})
	h, _ := f.svc.Create(context.Background(), HandoverInput{AssetIDs: []int64{2, 2}})
	if len(h.Assets) != 2 {
		t.Errorf("expected duplicate link rows to be kept, got %d assets", len(h.Assets))
	}
}

func TestUpdate_ReplacesAssetSet(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	h, _ := f.svc.Create(ctx, HandoverInput{HandoverNotes: "before", AssetIDs: []int64{1, 2}})

	got, err := f.svc.Update(ctx, h.ID, HandoverInput{
		FromShiftID:   int64Ptr(11),
		HandoverNotes: "after",
		AssetIDs:      []int64{3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := assetIDs(got); len(ids) != 1 || ids[0] != 3 {
		t.Errorf("expected asset set {3}, got %v", ids)
	}
	if got.HandoverNotes != "after" || got.FromShiftID == nil || *got.FromShiftID != 11 {
		t.Errorf("header not replaced: %+v", got)
	}

	if *f.logs.records[0].HandoverNotes != "before" {
		t.Error("log entry must not follow later edits")
	}
	if len(f.logs.records) != 1 {
		t.Error("update must not write a log entry")
	}
}

func TestUpdate_EmptyAssetList(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	h, _ := f.svc.Create(ctx, HandoverInput{AssetIDs: []int64{1}})
	got, err := f.svc.Update(ctx, h.ID, HandoverInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Assets) != 0 {
		t.Errorf("expected no assets, got %d", len(got.Assets))
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(Options{})
	if _, err := f.svc.Update(context.Background(), 5, HandoverInput{}); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetAndList(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	first, _ := f.svc.Create(ctx, HandoverInput{HandoverNotes: "first", AssetIDs: []int64{1}})
	second, _ := f.svc.Create(ctx, HandoverInput{HandoverNotes: "second", AssetIDs: []int64{2, 3}})

	items, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatal("expected newest first")
	}
	if len(items[0].Assets) != 2 || len(items[1].Assets) != 1 {
		t.Error("expected assets attached per handover")
	}

	got, err := f.svc.Get(ctx, first.ID)
	if err != nil || got.Assets[0].ID != 1 {
		t.Errorf("unexpected get result: %+v, %v", got, err)
	}
	if _, err := f.svc.Get(ctx, 77); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestList_Empty(t *testing.T) {
	f := newFixture(Options{})
	items, err := f.svc.List(context.Background())
	if err != nil || items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil list, got %v, %v", items, err)
	}
}

func TestExport_SeedsPlaceholderWhenEmpty(t *testing.T) {
	f := newFixture(Options{SeedPlaceholder: true})
	ctx := context.Background()

	res, err := f.svc.Export(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Total != 1 || len(res.Data) != 1 {
		t.Fatalf("expected exactly the placeholder, got %+v", res)
	}
	if res.Data[0].FromShiftUser != "Тестовый Пользователь 1" {
		t.Errorf("unexpected placeholder: %+v", res.Data[0])
	}

	f.svc.Create(ctx, HandoverInput{HandoverNotes: "real one"})
	res, _ = f.svc.Export(ctx)
	if res.Total != 2 {
		t.Fatalf("expected placeholder plus real entry, got %d", res.Total)
	}
	if res.Data[0].HandoverNotes != "real one" {
		t.Error("expected newest entry first")
	}
}

func TestExport_NoSeed(t *testing.T) {
	f := newFixture(Options{})
	res, err := f.svc.Export(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Total != 0 || res.Data == nil {
		t.Errorf("expected empty successful export, got %+v", res)
	}
}

func TestExport_SkipsDamagedRows(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	f.svc.Create(ctx, HandoverInput{HandoverNotes: "good"})
	f.svc.Create(ctx, HandoverInput{HandoverNotes: "bad"})
	f.logs.records[1].AssetsInfo = nil

	res, err := f.svc.Export(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Data[0].HandoverNotes != "good" {
		t.Errorf("expected only the readable row, got %+v", res.Data)
	}
}

func TestClearAll(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	f.svc.Create(ctx, HandoverInput{AssetIDs: []int64{1}})
	f.svc.Create(ctx, HandoverInput{AssetIDs: []int64{2}})

	res, err := f.svc.ClearAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DeletedHandovers != 2 || res.DeletedLogs != 2 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if !strings.Contains(res.Message, "2") {
		t.Errorf("unexpected message: %s", res.Message)
	}
	if len(f.repo.items) != 0 || len(f.repo.links) != 0 || len(f.logs.records) != 0 {
		t.Error("expected everything removed")
	}
	if res.ArchiveKey != "" {
		t.Error("expected no archive without a store")
	}
}

func TestClearAll_ArchivesFirst(t *testing.T) {
	store := blobstore.NewMemoryStore()
	f := newFixture(Options{Archive: store})
	ctx := context.Background()
	f.svc.Create(ctx, HandoverInput{HandoverNotes: "archived"})

	res, err := f.svc.ClearAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ArchiveKey != "handover-archive/20250301T210530Z.xlsx" {
		t.Errorf("unexpected archive key: %s", res.ArchiveKey)
	}
	data, err := store.Get(ctx, res.ArchiveKey)
	if err != nil || len(data) == 0 {
		t.Errorf("expected archived workbook, got %d bytes, %v", len(data), err)
	}
}

func TestClearAll_ArchiveFailureAborts(t *testing.T) {
	f := newFixture(Options{Archive: failingStore{}})
	ctx := context.Background()
	f.svc.Create(ctx, HandoverInput{HandoverNotes: "kept"})

	_, err := f.svc.ClearAll(ctx)
	if apperr.KindOf(err) != apperr.KindUnexpected || err == nil {
		t.Fatalf("expected unexpected error, got %v", err)
	}
	if len(f.repo.items) != 1 || len(f.logs.records) != 1 {
		t.Error("expected nothing deleted after a failed archive")
	}
}

func TestDescribeAssets(t *testing.T) {
	if got := describeAssets(nil); got != noAssets {
		t.Errorf("expected sentinel, got %q", got)
	}
	got := describeAssets([]*asset.Asset{{Title: "A", AssetType: "CASE", Description: "d"}})
	if got != "A (CASE): d" {
		t.Errorf("unexpected description: %q", got)
	}
}
