package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/meetreminder/meetreminder/internal/calendar"
	"github.com/meetreminder/meetreminder/internal/database"
	"github.com/meetreminder/meetreminder/internal/email"
	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/meetreminder/meetreminder/internal/model"
	"github.com/meetreminder/meetreminder/internal/repository"
	"github.com/meetreminder/meetreminder/internal/template"
	"github.com/meetreminder/meetreminder/internal/trigger"
)

const testSentFormat = "2006-01-02 15:04"

var testNow = time.Date(2026, 10, 18, 13, 55, 0, 0, time.UTC)

func openStore(t *testing.T) *repository.ReminderRepository {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "reminders.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := database.MigrateUp(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewReminderRepository(db, testSentFormat, time.UTC)
}

type fakeSource struct {
	bundle  *model.TemplateBundle
	err     error
	subject string
}

func (f *fakeSource) ResolveBySubject(ctx context.Context, subject string) (*model.TemplateBundle, error) {
	f.subject = subject
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle, nil
}

type fakeLiveness struct {
	live  bool
	err   error
	calls int
	start time.Time
	end   time.Time
}

func (f *fakeLiveness) IsStillScheduled(ctx context.Context, calendarID string, start, end time.Time, title, attendee string) (bool, error) {
	f.calls++
	f.start, f.end = start, end
	return f.live, f.err
}

type fakeSender struct {
	fail map[string]error
	sent []email.Message
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	if err := f.fail[msg.To]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type failingRegistry struct{}

func (failingRegistry) Exists(ctx context.Context, handler string) (bool, error) {
	return false, errors.New("redis unavailable")
}

func (failingRegistry) Create(ctx context.Context, t trigger.Trigger) (bool, error) {
	return false, errors.New("redis unavailable")
}

func (failingRegistry) List(ctx context.Context) ([]trigger.Trigger, error) {
	return nil, errors.New("redis unavailable")
}

func testBundle() *model.TemplateBundle {
	return &model.TemplateBundle{
		Subject: "Reminder: {{Title}} at {{TimeScheduled}}",
		Text:    "Hi {{First}}, join {{GoogleMeetURL}}",
		HTML:    `<p>Hi {{First}}</p><img src="cid:logo" alt="logo.png">`,
		InlineImages: map[string]model.Attachment{
			"logo": {Name: "logo.png", ContentType: "image/png", Data: []byte("png"), Inline: true},
		},
	}
}

func newDispatcher(store ReminderStore, source template.Source, live Liveness, sender email.Sender) *DispatchService {
	svc := NewDispatchService(store, source, live, sender, DispatchConfig{
		CalendarID:   "owner@x.com",
		DraftSubject: "Today's catch up",
		LeadWindow:   6 * time.Minute,
		SentFormat:   testSentFormat,
		Location:     time.UTC,
	}, logger.Nop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func schedule(t *testing.T, svc *SchedulerService, req ScheduleRequest) ScheduleStatus {
	t.Helper()
	status, err := svc.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	return status
}

func TestScheduleDeduplicatesPending(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	svc := NewSchedulerService(store, trigger.NewMemoryRegistry(), time.Minute, logger.Nop())

	req := ScheduleRequest{Email: "a@x.com", Name: "Ada Lovelace", Time: "9:05", MeetURL: "https://meet.google.com/x", Title: "Sync"}
	if got := schedule(t, svc, req); got != ScheduleScheduled {
		t.Fatalf("first schedule = %q, want %q", got, ScheduleScheduled)
	}

	again := req
	again.Email = " a@x.com "
	again.Time = "09:05"
	if got := schedule(t, svc, again); got != ScheduleAlreadyExists {
		t.Fatalf("second schedule = %q, want %q", got, ScheduleAlreadyExists)
	}

	rows, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].FirstName != "Ada" || rows[0].ScheduledTime != "09:05" {
		t.Fatalf("row = %+v, want first name Ada at 09:05", rows[0])
	}

	if _, err := store.WriteStatusColumn(ctx, []model.Status{model.Sent(testNow)}); err != nil {
		t.Fatalf("WriteStatusColumn: %v", err)
	}
	if got := schedule(t, svc, req); got != ScheduleScheduled {
		t.Fatalf("schedule after sent = %q, want %q", got, ScheduleScheduled)
	}

	rows, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}

func TestScheduleValidation(t *testing.T) {
	tests := []struct {
		name string
		req  ScheduleRequest
	}{
		{name: "missing email", req: ScheduleRequest{Time: "14:00"}},
		{name: "blank email", req: ScheduleRequest{Email: "  ", Time: "14:00"}},
		{name: "missing time", req: ScheduleRequest{Email: "a@x.com"}},
		{name: "hour out of range", req: ScheduleRequest{Email: "a@x.com", Time: "25:00"}},
		{name: "not a clock", req: ScheduleRequest{Email: "a@x.com", Time: "2pm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			svc := NewSchedulerService(store, nil, time.Minute, logger.Nop())

			_, err := svc.Schedule(context.Background(), tt.req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			rows, err := store.List(context.Background())
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(rows) != 0 {
				t.Fatalf("rows = %d, want 0", len(rows))
			}
		})
	}
}

func TestScheduleEnsuresDispatchTrigger(t *testing.T) {
	ctx := context.Background()
	reg := trigger.NewMemoryRegistry()
	svc := NewSchedulerService(openStore(t), reg, 2*time.Minute, logger.Nop())

	schedule(t, svc, ScheduleRequest{Email: "a@x.com", Time: "14:00"})
	schedule(t, svc, ScheduleRequest{Email: "b@x.com", Time: "14:00"})

	triggers, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(triggers) != 1 {
		t.Fatalf("triggers = %+v, want exactly one", triggers)
	}
	if triggers[0].Handler != DispatchHandler || triggers[0].Every != 2*time.Minute {
		t.Fatalf("trigger = %+v", triggers[0])
	}
}

func TestScheduleSurvivesRegistryFailure(t *testing.T) {
	store := openStore(t)
	svc := NewSchedulerService(store, failingRegistry{}, time.Minute, logger.Nop())

	if got := schedule(t, svc, ScheduleRequest{Email: "a@x.com", Time: "14:00"}); got != ScheduleScheduled {
		t.Fatalf("Schedule = %q, want %q", got, ScheduleScheduled)
	}
	rows, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
}

func TestResumeEnsuresTriggerOnlyWithPendingRows(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	reg := trigger.NewMemoryRegistry()
	svc := NewSchedulerService(store, reg, time.Minute, logger.Nop())

	pending, err := svc.Resume(ctx)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if exists, _ := reg.Exists(ctx, DispatchHandler); pending != 0 || exists {
		t.Fatalf("empty store: pending = %d, trigger exists = %v", pending, exists)
	}

	if err := store.Append(ctx, &model.Reminder{RecipientEmail: "a@x.com", ScheduledTime: "14:00"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	pending, err = svc.Resume(ctx)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if exists, _ := reg.Exists(ctx, DispatchHandler); pending != 1 || !exists {
		t.Fatalf("pending = %d, trigger exists = %v", pending, exists)
	}
}

func TestDispatchTiming(t *testing.T) {
	tests := []struct {
		name     string
		clock    string
		wantSent bool
	}{
		{name: "five minutes ahead", clock: "14:00", wantSent: true},
		{name: "exactly now", clock: "13:55", wantSent: true},
		{name: "edge of window", clock: "14:01", wantSent: true},
		{name: "ten minutes ahead", clock: "14:05", wantSent: false},
		{name: "one minute late", clock: "13:54", wantSent: false},
		{name: "unparseable", clock: "later", wantSent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := openStore(t)
			if err := store.Append(ctx, &model.Reminder{
				RecipientEmail: "a@x.com",
				ScheduledTime:  tt.clock,
				MeetURL:        "https://meet.google.com/x",
				Title:          "Sync",
			}); err != nil {
				t.Fatalf("Append: %v", err)
			}
			sender := &fakeSender{}
			svc := newDispatcher(store, &fakeSource{bundle: testBundle()}, &fakeLiveness{live: true}, sender)

			result, err := svc.Dispatch(ctx)
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			rows, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}

			if tt.wantSent {
				if result.Sent != 1 || len(sender.sent) != 1 {
					t.Fatalf("result = %+v, sent %d, want one send", result, len(sender.sent))
				}
				if got := rows[0].Status.Format(testSentFormat); got != "2026-10-18 13:55" {
					t.Fatalf("status = %q, want %q", got, "2026-10-18 13:55")
				}
				return
			}
			if result.Sent != 0 || len(sender.sent) != 0 {
				t.Fatalf("result = %+v, want nothing sent", result)
			}
			if !rows[0].Status.IsPending() {
				t.Fatalf("status = %v, want pending", rows[0].Status.Kind)
			}
		})
	}
}

func TestDispatchSkipsRowsWithoutMeetURL(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.Append(ctx, &model.Reminder{RecipientEmail: "a@x.com", ScheduledTime: "14:00", Title: "Sync"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	live := &fakeLiveness{live: true}
	sender := &fakeSender{}

	result, err := newDispatcher(store, &fakeSource{bundle: testBundle()}, live, sender).Dispatch(ctx)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Processed != 1 || result.Sent != 0 || live.calls != 0 || len(sender.sent) != 0 {
		t.Fatalf("result = %+v, liveness calls %d, sent %d", result, live.calls, len(sender.sent))
	}
	rows, _ := store.List(ctx)
	if !rows[0].Status.IsPending() {
		t.Fatal("row without meet URL should stay pending")
	}
}

func TestDispatchCancelsMovedMeeting(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.Append(ctx, &model.Reminder{RecipientEmail: "a@x.com", ScheduledTime: "14:00", MeetURL: "https://meet.google.com/x", Title: "Sync"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	live := &fakeLiveness{live: false}
	sender := &fakeSender{}

	result, err := newDispatcher(store, &fakeSource{bundle: testBundle()}, live, sender).Dispatch(ctx)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Cancelled != 1 || len(sender.sent) != 0 {
		t.Fatalf("result = %+v, sent %d", result, len(sender.sent))
	}

	wantStart := time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)
	if !live.start.Equal(wantStart) || !live.end.Equal(wantStart.Add(time.Minute)) {
		t.Fatalf("liveness window = [%v, %v)", live.start, live.end)
	}

	rows, _ := store.List(ctx)
	if got := rows[0].Status.Format(testSentFormat); got != "Cancelled/Moved" {
		t.Fatalf("status = %q, want %q", got, "Cancelled/Moved")
	}
}

func TestDispatchLivenessErrorStillSends(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.Append(ctx, &model.Reminder{RecipientEmail: "a@x.com", ScheduledTime: "14:00", MeetURL: "https://meet.google.com/x", Title: "Sync"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sender := &fakeSender{}

	result, err := newDispatcher(store, &fakeSource{bundle: testBundle()}, &fakeLiveness{err: errors.New("calendar down")}, sender).Dispatch(ctx)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Sent != 1 || len(sender.sent) != 1 {
		t.Fatalf("result = %+v, want one send", result)
	}
}

type slowSender struct {
	mu    sync.Mutex
	delay time.Duration
	sent  []string
}

func (s *slowSender) Send(ctx context.Context, msg email.Message) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg.To)
	return nil
}

func TestConcurrentDispatchSendsOnce(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.Append(ctx, &model.Reminder{RecipientEmail: "a@x.com", ScheduledTime: "14:00", MeetURL: "https://meet.google.com/x", Title: "Sync"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sender := &slowSender{delay: 50 * time.Millisecond}
	svc := newDispatcher(store, &fakeSource{bundle: testBundle()}, &fakeLiveness{live: true}, sender)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Dispatch(ctx); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails for one reminder, want 1", len(sender.sent))
	}
	rows, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if rows[0].Status.Kind != model.StatusSent {
		t.Fatalf("status = %v, want sent", rows[0].Status.Kind)
	}
}

func TestDispatchSendFailureDoesNotStopBatch(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	for _, addr := range []string{"broken@x.com", "b@x.com"} {
		if err := store.Append(ctx, &model.Reminder{RecipientEmail: addr, ScheduledTime: "14:00", MeetURL: "https://meet.google.com/x", Title: "Sync"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	sender := &fakeSender{fail: map[string]error{"broken@x.com": errors.New("mailbox full")}}

	result, err := newDispatcher(store, &fakeSource{bundle: testBundle()}, &fakeLiveness{live: true}, sender).Dispatch(ctx)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Processed != 2 || result.Failed != 1 || result.Sent != 1 {
		t.Fatalf("result = %+v", result)
	}

	rows, _ := store.List(ctx)
	if got := rows[0].Status.Format(testSentFormat); got != "Error: mailbox full" {
		t.Fatalf("first status = %q, want %q", got, "Error: mailbox full")
	}
	if rows[1].Status.Kind != model.StatusSent {
		t.Fatalf("second status = %v, want sent", rows[1].Status.Kind)
	}
}

func TestDispatchAbortsWithoutTemplate(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.Append(ctx, &model.Reminder{RecipientEmail: "a@x.com", ScheduledTime: "14:00", MeetURL: "https://meet.google.com/x", Title: "Sync"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	source := &fakeSource{err: template.ErrTemplateNotFound}
	sender := &fakeSender{}

	_, err := newDispatcher(store, source, &fakeLiveness{live: true}, sender).Dispatch(ctx)
	if !errors.Is(err, template.ErrTemplateNotFound) {
		t.Fatalf("err = %v, want ErrTemplateNotFound", err)
	}
	if source.subject != "Today's catch up" {
		t.Fatalf("template subject = %q", source.subject)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sent %d messages, want 0", len(sender.sent))
	}
	rows, _ := store.List(ctx)
	if !rows[0].Status.IsPending() {
		t.Fatal("row should stay pending when the template is missing")
	}
}

func TestDispatchRecordsRuns(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.Append(ctx, &model.Reminder{RecipientEmail: "a@x.com", ScheduledTime: "14:00", MeetURL: "https://meet.google.com/x", Title: "Sync"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	runs := &memoryRunLog{}
	source := &fakeSource{bundle: testBundle()}
	svc := newDispatcher(store, source, &fakeLiveness{live: true}, &fakeSender{}).WithRunLog(runs)

	if _, err := svc.Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	source.err = template.ErrTemplateNotFound
	if _, err := svc.Dispatch(ctx); err == nil {
		t.Fatal("expected the second cycle to fail")
	}

	recent, err := svc.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("runs = %d, want 2", len(recent))
	}
	if recent[0].Sent != 1 || recent[0].Error != "" {
		t.Fatalf("first run = %+v", recent[0])
	}
	if recent[1].Error == "" || recent[1].Processed != 0 {
		t.Fatalf("aborted run = %+v", recent[1])
	}
}

type memoryRunLog struct {
	runs []model.DispatchRun
}

func (m *memoryRunLog) Create(ctx context.Context, run *model.DispatchRun) error {
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memoryRunLog) ListRecent(ctx context.Context, limit int) ([]model.DispatchRun, error) {
	return m.runs, nil
}

func TestGetReminder(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	svc := NewSchedulerService(store, nil, time.Minute, logger.Nop())
	schedule(t, svc, ScheduleRequest{Email: "a@x.com", Time: "14:00"})

	rem, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rem.RecipientEmail != "a@x.com" {
		t.Fatalf("reminder = %+v", rem)
	}
	if _, err := svc.Get(ctx, 99); !errors.Is(err, ErrReminderNotFound) {
		t.Fatalf("err = %v, want ErrReminderNotFound", err)
	}
}

func TestDispatchLeavesTerminalRowsAlone(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	if err := store.Append(ctx, &model.Reminder{RecipientEmail: "a@x.com", ScheduledTime: "14:00", MeetURL: "https://meet.google.com/x", Title: "Sync", Status: model.Cancelled()}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sender := &fakeSender{}

	result, err := newDispatcher(store, &fakeSource{bundle: testBundle()}, &fakeLiveness{live: true}, sender).Dispatch(ctx)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Processed != 1 || result.Sent+result.Cancelled+result.Failed != 0 || len(sender.sent) != 0 {
		t.Fatalf("result = %+v", result)
	}
}

type calendarStub struct {
	events []model.CalendarEvent
}

func (c calendarStub) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]model.CalendarEvent, error) {
	return c.events, nil
}

type draftStub struct {
	draft *model.Draft
}

func (d draftStub) FindDraftBySubject(ctx context.Context, subject string) (*model.Draft, bool, error) {
	if d.draft == nil || d.draft.Subject != subject {
		return nil, false, nil
	}
	return d.draft, true, nil
}

func TestScheduleThenDispatch(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	scheduler := NewSchedulerService(store, trigger.NewMemoryRegistry(), time.Minute, logger.Nop())

	schedule(t, scheduler, ScheduleRequest{
		Email:   "a@x.com",
		Name:    "Ada Lovelace",
		Time:    "14:00",
		MeetURL: "https://meet.google.com/abc-defg-hij",
		Title:   "Sync",
	})

	source := template.NewDraftSource(draftStub{draft: &model.Draft{
		Subject: "Today's catch up",
		Text:    "Hi {{First}}, {{Title}} starts at {{TimeScheduled}}: {{GoogleMeetURL}}",
		HTML:    "<p>Hi {{First}}</p>",
	}})
	liveness := calendar.NewLivenessChecker(calendarStub{events: []model.CalendarEvent{
		{Title: "Sync", Attendees: []string{"a@x.com"}},
	}})
	sender := &fakeSender{}

	result, err := newDispatcher(store, source, liveness, sender).Dispatch(ctx)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("result = %+v, want one sent", result)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "a@x.com" {
		t.Fatalf("sent = %+v, want one message to a@x.com", sender.sent)
	}
	if want := "Hi Ada, Sync starts at 14:00: https://meet.google.com/abc-defg-hij"; sender.sent[0].TextBody != want {
		t.Fatalf("text = %q, want %q", sender.sent[0].TextBody, want)
	}

	rows, _ := store.List(ctx)
	if got := rows[0].Status.Format(testSentFormat); got != "2026-10-18 13:55" {
		t.Fatalf("status = %q, want %q", got, "2026-10-18 13:55")
	}

	// A second cycle in the same minute must not send again.
	if _, err := newDispatcher(store, source, liveness, sender).Dispatch(ctx); err != nil {
		t.Fatalf("second Dispatch: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages after second cycle, want 1", len(sender.sent))
	}
}

type inboxStub struct {
	query string
}

func (i *inboxStub) LatestMessage(ctx context.Context, query string) (*model.InboxMessage, error) {
	i.query = query
	return &model.InboxMessage{Found: true, Subject: "Alert"}, nil
}

func TestSendReport(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	svc := NewMailService(sender, nil, MailConfig{ReportRecipient: "boss@x.com"}, logger.Nop())

	if err := svc.SendReport(ctx, "", "<h1>ok</h1>"); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "boss@x.com" || msg.Subject != "Daily Huddle Report" || msg.TextBody != "Please view the HTML content." {
		t.Fatalf("message = %+v", msg)
	}

	if err := svc.SendReport(ctx, "x", " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	unset := NewMailService(sender, nil, MailConfig{}, logger.Nop())
	if err := unset.SendReport(ctx, "x", "<p>x</p>"); !errors.Is(err, ErrReportRecipientMissing) {
		t.Fatalf("err = %v, want ErrReportRecipientMissing", err)
	}
}

func TestLatestAlert(t *testing.T) {
	ctx := context.Background()
	inbox := &inboxStub{}
	svc := NewMailService(&fakeSender{}, inbox, MailConfig{InboxQuery: "from:alerts@x.com"}, logger.Nop())

	msg, err := svc.LatestAlert(ctx)
	if err != nil {
		t.Fatalf("LatestAlert: %v", err)
	}
	if !msg.Found || inbox.query != "from:alerts@x.com" {
		t.Fatalf("msg = %+v, query %q", msg, inbox.query)
	}

	if _, err := NewMailService(&fakeSender{}, nil, MailConfig{}, logger.Nop()).LatestAlert(ctx); !errors.Is(err, ErrInboxUnavailable) {
		t.Fatalf("err = %v, want ErrInboxUnavailable", err)
	}
}
