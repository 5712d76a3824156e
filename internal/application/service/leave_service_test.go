package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/leave-bot/internal/domain/entity"
	"github.com/garyjia/leave-bot/internal/domain/leave"
	"github.com/garyjia/leave-bot/internal/infrastructure/persistence/memory"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// recordingNotifier captures notification calls for assertions.
type recordingNotifier struct {
	mu              sync.Mutex
	approverNotices []*entity.LeaveRequest
	confirmations   []*entity.LeaveRequest
	outcomes        []*entity.LeaveRequest
	remainings      []int
	failApprover    error
}

func (n *recordingNotifier) NotifyApprover(ctx context.Context, req *entity.LeaveRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failApprover != nil {
		return n.failApprover
	}
	n.approverNotices = append(n.approverNotices, req)
	return nil
}

func (n *recordingNotifier) ConfirmSubmission(ctx context.Context, req *entity.LeaveRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, req)
	return nil
}

func (n *recordingNotifier) NotifyRequester(ctx context.Context, req *entity.LeaveRequest, remaining int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, req)
	n.remainings = append(n.remainings, remaining)
	return nil
}

type fixture struct {
	svc      LeaveService
	requests *memory.RequestRepository
	balances *memory.BalanceRepository
	ledger   BalanceLedger
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	requests := memory.NewRequestRepository()
	balances := memory.NewBalanceRepository()
	notifier := &recordingNotifier{}
	ledger := NewBalanceLedger(balances, entity.DefaultBalances{Annual: 20, Sick: 10, Personal: 5}, noopLogger{})
	svc := NewLeaveService(requests, ledger, memory.NewTxManager(), notifier, noopLogger{})

	return &fixture{
		svc:      svc,
		requests: requests,
		balances: balances,
		ledger:   ledger,
		notifier: notifier,
	}
}

func submitInput() SubmitInput {
	return SubmitInput{
		RequesterID:   "u-alice",
		RequesterName: "Alice",
		Category:      entity.CategoryAnnual,
		StartDate:     time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC),  // Monday
		EndDate:       time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC), // Friday
		Reason:        "family trip",
		ApproverID:    "u-bob",
		ApproverName:  "Bob",
	}
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, entity.StatusPending, req.Status)
	assert.Equal(t, 5, req.Days)
	assert.Nil(t, req.RespondedAt, "pending request must have no responded_at")
	assert.False(t, req.RequestedAt.IsZero())

	// Balance is checked but not yet debited
	bal, err := f.svc.GetBalance(context.Background(), "u-alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 20, bal.Annual)

	// Approver got the actionable notice, requester got the confirmation
	require.Len(t, f.notifier.approverNotices, 1)
	require.Len(t, f.notifier.confirmations, 1)
	assert.Equal(t, req.ID, f.notifier.approverNotices[0].ID)
}

func TestSubmit_NotifierFailureDoesNotFailSubmission(t *testing.T) {
	f := newFixture(t)
	f.notifier.failApprover = errors.New("transport down")

	req, err := f.svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
}

func TestSubmit_UnknownCategory(t *testing.T) {
	f := newFixture(t)

	in := submitInput()
	in.Category = "SABBATICAL"
	_, err := f.svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, leave.ErrUnknownCategory)
}

func TestSubmit_InvalidDateRange(t *testing.T) {
	f := newFixture(t)

	in := submitInput()
	in.StartDate, in.EndDate = in.EndDate, in.StartDate
	_, err := f.svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, leave.ErrInvalidDateRange)
}

func TestSubmit_WeekendOnlyRejected(t *testing.T) {
	f := newFixture(t)

	in := submitInput()
	in.StartDate = time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC) // Saturday
	in.EndDate = time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)   // Sunday
	_, err := f.svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, leave.ErrZeroBusinessDays)

	// No record may exist after the rejection
	recent, err := f.svc.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestSubmit_InsufficientBalance(t *testing.T) {
	f := newFixture(t)

	in := submitInput()
	in.Category = entity.CategoryPersonal       // default 5
	in.EndDate = in.StartDate.AddDate(0, 0, 11) // two full work weeks: 10 business days
	_, err := f.svc.Submit(context.Background(), in)

	var insufficient *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, entity.CategoryPersonal, insufficient.Category)
	assert.Equal(t, 5, insufficient.ShortBy())

	recent, err := f.svc.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent, "failed submission must create no record")
}

func TestDecide_Approve(t *testing.T) {
	f := newFixture(t)
	req, err := f.svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	decided, err := f.svc.Decide(context.Background(), DecideInput{
		RequestID: req.ID,
		ActorID:   "u-bob",
		ActorName: "Bob",
		Decision:  entity.DecisionApprove,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, decided.Status)
	require.NotNil(t, decided.RespondedAt)

	bal, err := f.svc.GetBalance(context.Background(), "u-alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 15, bal.Annual, "approval debits the day count")

	require.Len(t, f.notifier.outcomes, 1)
	assert.Equal(t, 15, f.notifier.remainings[0])
}

func TestDecide_Decline(t *testing.T) {
	f := newFixture(t)
	req, err := f.svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	decided, err := f.svc.Decide(context.Background(), DecideInput{
		RequestID: req.ID,
		ActorID:   "u-bob",
		Decision:  entity.DecisionDecline,
		Note:      "coverage gap that week",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDeclined, decided.Status)
	assert.Equal(t, "coverage gap that week", decided.ResponseNote)
	require.NotNil(t, decided.RespondedAt)

	bal, err := f.svc.GetBalance(context.Background(), "u-alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 20, bal.Annual, "decline leaves the balance untouched")
}

func TestDecide_AlreadyDecided(t *testing.T) {
	f := newFixture(t)
	req, err := f.svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	in := DecideInput{RequestID: req.ID, ActorID: "u-bob", Decision: entity.DecisionApprove}
	_, err = f.svc.Decide(context.Background(), in)
	require.NoError(t, err)

	// Duplicate delivery of the same card action
	_, err = f.svc.Decide(context.Background(), in)
	assert.ErrorIs(t, err, leave.ErrAlreadyDecided)

	// Opposite decision after the fact
	in.Decision = entity.DecisionDecline
	_, err = f.svc.Decide(context.Background(), in)
	assert.ErrorIs(t, err, leave.ErrAlreadyDecided)

	// Exactly one debit happened
	bal, err := f.svc.GetBalance(context.Background(), "u-alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 15, bal.Annual)
}

func TestDecide_NotApprover(t *testing.T) {
	f := newFixture(t)
	req, err := f.svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	_, err = f.svc.Decide(context.Background(), DecideInput{
		RequestID: req.ID,
		ActorID:   "u-mallory",
		Decision:  entity.DecisionApprove,
	})
	assert.ErrorIs(t, err, leave.ErrNotApprover)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
}

func TestDecide_RequestNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Decide(context.Background(), DecideInput{
		RequestID: "no-such-id",
		ActorID:   "u-bob",
		Decision:  entity.DecisionApprove,
	})
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

func TestDecide_AutoDeclineWhenBalanceShrank(t *testing.T) {
	f := newFixture(t)

	// Two pending annual requests that only fit one at a time: 15 + 15 > 20.
	in := submitInput()
	in.EndDate = in.StartDate.AddDate(0, 0, 18) // three full work weeks: 15 business days
	first, err := f.svc.Submit(context.Background(), in)
	require.NoError(t, err)

	in.StartDate = in.StartDate.AddDate(0, 0, 28)
	in.EndDate = in.EndDate.AddDate(0, 0, 28)
	second, err := f.svc.Submit(context.Background(), in)
	require.NoError(t, err)

	_, err = f.svc.Decide(context.Background(), DecideInput{
		RequestID: first.ID, ActorID: "u-bob", Decision: entity.DecisionApprove,
	})
	require.NoError(t, err)

	decided, err := f.svc.Decide(context.Background(), DecideInput{
		RequestID: second.ID, ActorID: "u-bob", Decision: entity.DecisionApprove,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDeclined, decided.Status)
	assert.Equal(t, AutoDeclineNote, decided.ResponseNote)
	require.NotNil(t, decided.RespondedAt)

	// No second debit took place
	bal, err := f.svc.GetBalance(context.Background(), "u-alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 5, bal.Annual)
}

func TestDecide_ConcurrentDecisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, submitInput())
	require.NoError(t, err)

	decisions := []string{entity.DecisionApprove, entity.DecisionDecline}
	errs := make([]error, len(decisions))
	statuses := make([]string, len(decisions))

	var wg sync.WaitGroup
	for i, d := range decisions {
		wg.Add(1)
		go func(i int, d string) {
			defer wg.Done()
			decided, err := f.svc.Decide(ctx, DecideInput{RequestID: req.ID, ActorID: "u-bob", Decision: d})
			errs[i] = err
			if err == nil {
				statuses[i] = decided.Status
			}
		}(i, d)
	}
	wg.Wait()

	winners := 0
	winnerStatus := ""
	for i := range decisions {
		if errs[i] == nil {
			winners++
			winnerStatus = statuses[i]
		} else {
			assert.ErrorIs(t, errs[i], leave.ErrAlreadyDecided)
		}
	}
	require.Equal(t, 1, winners, "exactly one concurrent decision may succeed")

	// The balance reflects exactly one debit, or none if decline won.
	bal, err := f.svc.GetBalance(ctx, "u-alice", "Alice")
	require.NoError(t, err)
	if winnerStatus == entity.StatusApproved {
		assert.Equal(t, 15, bal.Annual)
	} else {
		assert.Equal(t, 20, bal.Annual)
	}
}

func TestScenario_BalanceConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Default Annual=20; approve Mon-Fri (5 days) then a 20-day request
	// must fail with no record created (15 remaining < 20 requested).
	req, err := f.svc.Submit(ctx, submitInput())
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, DecideInput{RequestID: req.ID, ActorID: "u-bob", Decision: entity.DecisionApprove})
	require.NoError(t, err)

	in := submitInput()
	in.StartDate = time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC) // Monday
	in.EndDate = in.StartDate.AddDate(0, 0, 25)                            // 20 business days
	_, err = f.svc.Submit(ctx, in)
	require.True(t, leave.IsInsufficientBalance(err), "got %v", err)

	recent, err := f.svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	// Conservation: approved days + remaining == starting counter.
	approvedDays := 0
	for _, r := range recent {
		if r.Status == entity.StatusApproved && r.Category == entity.CategoryAnnual {
			approvedDays += r.Days
		}
	}
	bal, err := f.svc.GetBalance(ctx, "u-alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 20, approvedDays+bal.Annual)
}

func TestListRecent_MostRecentFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC) // Monday
	for i := 0; i < 3; i++ {
		in := submitInput()
		in.Category = entity.CategorySick
		in.StartDate = start.AddDate(0, 0, 7*i)
		in.EndDate = in.StartDate
		req, err := f.svc.Submit(ctx, in)
		require.NoError(t, err)
		ids = append(ids, req.ID)
		time.Sleep(2 * time.Millisecond) // distinct requested_at ordering
	}

	recent, err := f.svc.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}

func TestPendingMatchesRespondedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Submit(ctx, submitInput())
	require.NoError(t, err)

	in := submitInput()
	in.Category = entity.CategorySick
	in.StartDate = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	in.EndDate = in.StartDate
	decided, err := f.svc.Submit(ctx, in)
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, DecideInput{RequestID: decided.ID, ActorID: "u-bob", Decision: entity.DecisionDecline})
	require.NoError(t, err)

	recent, err := f.svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	for _, r := range recent {
		if r.Status == entity.StatusPending {
			assert.Nil(t, r.RespondedAt, "request %s", r.ID)
		} else {
			assert.NotNil(t, r.RespondedAt, "request %s", r.ID)
		}
	}
	_ = pending
}
