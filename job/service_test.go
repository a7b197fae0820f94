package job

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"parcelflow/fault"
)

type fakeReputation struct {
	completed  []string
	recomputed []string
	incErr     error
	recErr     error
}

func (f *fakeReputation) IncrementCompleted(ctx context.Context, gigWorkerID string) error {
	f.completed = append(f.completed, gigWorkerID)
	return f.incErr
}

func (f *fakeReputation) RecomputeRating(ctx context.Context, gigWorkerID string) error {
	f.recomputed = append(f.recomputed, gigWorkerID)
	return f.recErr
}

func newTestService(t *testing.T) (*Service, *MemoryRepository, *fakeReputation) {
	t.Helper()
	repo := NewMemoryRepository()
	rep := &fakeReputation{}
	ids := 0
	codes := 0
	svc := NewService(repo, rep).
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("job-%d", ids)
		}).
		WithCodeGenerator(func() (string, error) {
			codes++
			return fmt.Sprintf("%04d", codes), nil
		}).
		WithClock(func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		})
	return svc, repo, rep
}

func validCreateParams() CreateParams {
	return CreateParams{
		CustomerID:           "customer-1",
		CustomerWallet:       "0xcustomer",
		LockerLocation:       "Syntagma Square Locker",
		LockerCode:           "SYN-001",
		DeliveryAddress:      "12 Ermou St, Athens",
		DeliveryInstructions: "ring twice",
		DistanceKm:           5,
		Amount:               decimal.RequireFromString("13.20"),
	}
}

func mustCreate(t *testing.T, svc *Service) Job {
	t.Helper()
	j, err := svc.Create(context.Background(), validCreateParams())
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return j
}

func mustPay(t *testing.T, svc *Service, id string) Job {
	t.Helper()
	j, err := svc.ConfirmPayment(context.Background(), id, PaymentParams{TransactionHash: "0xabc123"})
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	return j
}

func mustAccept(t *testing.T, svc *Service, id string) AcceptResult {
	t.Helper()
	res, err := svc.Accept(context.Background(), id, AcceptParams{
		GigWorkerID:     "worker-1",
		GigWorkerWallet: "0xworker",
		GigWorkerName:   "Maria",
	})
	if err != nil {
		t.Fatalf("accept job: %v", err)
	}
	return res
}

func TestCreate_Defaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)

	if j.Status != StatusOpen {
		t.Errorf("expected status open, got %q", j.Status)
	}
	if j.Paid {
		t.Errorf("expected new job to be unpaid")
	}
	if j.PackageSize != SizeSmall {
		t.Errorf("expected default package size small, got %q", j.PackageSize)
	}
	if got := j.PlatformFee.String(); got != "1.32" {
		t.Errorf("expected default platform fee 1.32, got %s", got)
	}
	if len(j.PickupConfirmationCode) != 4 || len(j.DeliveryConfirmationCode) != 4 {
		t.Errorf("expected 4-digit confirmation codes, got %q and %q",
			j.PickupConfirmationCode, j.DeliveryConfirmationCode)
	}
	if j.PickupConfirmationCode == j.DeliveryConfirmationCode {
		t.Errorf("expected distinct pickup and delivery codes")
	}
	if j.DeliveryAddressPlain != "12 Ermou St, Athens" {
		t.Errorf("expected plaintext address to be stored, got %q", j.DeliveryAddressPlain)
	}
	if !Digested(j.DeliveryAddress) {
		t.Errorf("expected delivery address to be a digest, got %q", j.DeliveryAddress)
	}
}

func TestCreate_ExplicitFeeOverridesDefault(t *testing.T) {
	svc, _, _ := newTestService(t)
	params := validCreateParams()
	fee := decimal.RequireFromString("2.50")
	params.PlatformFee = &fee

	j, err := svc.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if got := j.PlatformFee.String(); got != "2.5" {
		t.Errorf("expected platform fee 2.5, got %s", got)
	}
}

func TestCreate_AlreadyDigestedAddress(t *testing.T) {
	svc, _, _ := newTestService(t)
	params := validCreateParams()
	digest := DigestAddress("12 Ermou St, Athens")
	params.DeliveryAddress = digest

	j, err := svc.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if j.DeliveryAddress != digest {
		t.Errorf("expected digest to be stored unchanged, got %q", j.DeliveryAddress)
	}
	if j.DeliveryAddressPlain != "" {
		t.Errorf("expected no plaintext for digested input, got %q", j.DeliveryAddressPlain)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := map[string]func(*CreateParams){
		"missing customer": func(p *CreateParams) { p.CustomerID = "" },
		"missing wallet":   func(p *CreateParams) { p.CustomerWallet = "" },
		"missing locker":   func(p *CreateParams) { p.LockerCode = "" },
		"missing address":  func(p *CreateParams) { p.DeliveryAddress = "" },
		"zero amount":      func(p *CreateParams) { p.Amount = decimal.Zero },
		"unknown size":     func(p *CreateParams) { p.PackageSize = "gigantic" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			params := validCreateParams()
			mutate(&params)
			_, err := svc.Create(context.Background(), params)
			if !fault.IsKind(err, fault.Validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestConfirmPayment_FlipsPaidOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)

	paid := mustPay(t, svc, j.ID)
	if !paid.Paid {
		t.Fatalf("expected job to be paid")
	}
	if paid.Status != StatusOpen {
		t.Errorf("expected job to stay open after payment, got %q", paid.Status)
	}
	if paid.ContractTxHash == nil || *paid.ContractTxHash != "0xabc123" {
		t.Errorf("expected transaction hash to be recorded")
	}
	if paid.PaidAt == nil {
		t.Errorf("expected paidAt to be set")
	}

	_, err := svc.ConfirmPayment(context.Background(), j.ID, PaymentParams{TransactionHash: "0xdef"})
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("expected conflict on double payment, got %v", err)
	}
}

func TestConfirmPayment_RequiresHash(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)

	_, err := svc.ConfirmPayment(context.Background(), j.ID, PaymentParams{})
	if !fault.IsKind(err, fault.Validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAccept_AssignsWorker(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustPay(t, svc, j.ID)

	res := mustAccept(t, svc, j.ID)
	if res.Job.Status != StatusAccepted {
		t.Errorf("expected status accepted, got %q", res.Job.Status)
	}
	if res.LockerCode != "SYN-001" {
		t.Errorf("expected locker code to be disclosed, got %q", res.LockerCode)
	}
	if res.Job.GigWorkerID == nil || *res.Job.GigWorkerID != "worker-1" {
		t.Errorf("expected worker to be assigned")
	}
	if res.Job.AcceptedAt == nil {
		t.Errorf("expected acceptedAt to be set")
	}
}

func TestAccept_DefaultsWorkerName(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)

	res, err := svc.Accept(context.Background(), j.ID, AcceptParams{
		GigWorkerID:     "worker-1",
		GigWorkerWallet: "0xworker",
	})
	if err != nil {
		t.Fatalf("accept job: %v", err)
	}
	if res.Job.GigWorkerName == nil || *res.Job.GigWorkerName != "Anonymous Worker" {
		t.Errorf("expected default worker name, got %v", res.Job.GigWorkerName)
	}
}

func TestAccept_OwnJobForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)

	_, err := svc.Accept(context.Background(), j.ID, AcceptParams{
		GigWorkerID:     "customer-1",
		GigWorkerWallet: "0xother",
	})
	if !fault.IsKind(err, fault.Forbidden) {
		t.Fatalf("expected forbidden for self-accept by id, got %v", err)
	}

	_, err = svc.Accept(context.Background(), j.ID, AcceptParams{
		GigWorkerID:     "someone-else",
		GigWorkerWallet: "0xcustomer",
	})
	if !fault.IsKind(err, fault.Forbidden) {
		t.Fatalf("expected forbidden for self-accept by wallet, got %v", err)
	}
}

func TestAccept_TakenJobConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	_, err := svc.Accept(context.Background(), j.ID, AcceptParams{
		GigWorkerID:     "worker-2",
		GigWorkerWallet: "0xworker2",
	})
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("expected conflict on already-accepted job, got %v", err)
	}
}

func TestDecline_ReturnsJobToPool(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	declined, err := svc.Decline(context.Background(), j.ID, Actor("worker-1"))
	if err != nil {
		t.Fatalf("decline job: %v", err)
	}
	if declined.Status != StatusOpen {
		t.Errorf("expected status open after decline, got %q", declined.Status)
	}
	if declined.GigWorkerID != nil || declined.GigWorkerWallet != nil {
		t.Errorf("expected worker slot to be cleared")
	}
	if declined.AcceptedAt != nil {
		t.Errorf("expected acceptedAt to be cleared")
	}

	// Another worker can now take it.
	res, err := svc.Accept(context.Background(), j.ID, AcceptParams{
		GigWorkerID:     "worker-2",
		GigWorkerWallet: "0xworker2",
	})
	if err != nil {
		t.Fatalf("re-accept after decline: %v", err)
	}
	if res.Job.Status != StatusAccepted {
		t.Errorf("expected re-accepted job, got %q", res.Job.Status)
	}
}

func TestDecline_OnlyAssignedWorker(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	_, err := svc.Decline(context.Background(), j.ID, Actor("worker-2"))
	if !fault.IsKind(err, fault.Forbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestConfirmPickup_RevealsAddress(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	res, err := svc.ConfirmPickup(context.Background(), j.ID, Actor("worker-1"))
	if err != nil {
		t.Fatalf("confirm pickup: %v", err)
	}
	if res.Job.Status != StatusPickedUp {
		t.Errorf("expected status picked_up, got %q", res.Job.Status)
	}
	if res.DeliveryAddress != "12 Ermou St, Athens" {
		t.Errorf("expected plaintext address disclosure, got %q", res.DeliveryAddress)
	}
	if res.DeliveryInstructions != "ring twice" {
		t.Errorf("expected instructions disclosure, got %q", res.DeliveryInstructions)
	}
}

func TestConfirmPickup_WalletActor(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	if _, err := svc.ConfirmPickup(context.Background(), j.ID, Actor("0xworker")); err != nil {
		t.Fatalf("expected wallet identity to match assigned worker, got %v", err)
	}
}

func TestConfirmPickup_WrongWorker(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	_, err := svc.ConfirmPickup(context.Background(), j.ID, Actor("worker-2"))
	if !fault.IsKind(err, fault.Forbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestConfirmDelivery_WrongCodeKeepsState(t *testing.T) {
	svc, repo, rep := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)
	if _, err := svc.ConfirmPickup(context.Background(), j.ID, Actor("worker-1")); err != nil {
		t.Fatalf("confirm pickup: %v", err)
	}

	_, err := svc.ConfirmDelivery(context.Background(), j.ID, Actor("worker-1"), "0000")
	if !fault.IsKind(err, fault.Validation) {
		t.Fatalf("expected validation error on wrong code, got %v", err)
	}

	current, err := repo.Get(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if current.Status != StatusPickedUp {
		t.Errorf("expected job to remain picked_up after failed attempt, got %q", current.Status)
	}
	if len(rep.completed) != 0 {
		t.Errorf("expected no completed-jobs increment after failed attempt")
	}
}

func TestConfirmDelivery_CompletesJob(t *testing.T) {
	svc, _, rep := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)
	if _, err := svc.ConfirmPickup(context.Background(), j.ID, Actor("worker-1")); err != nil {
		t.Fatalf("confirm pickup: %v", err)
	}

	res, err := svc.ConfirmDelivery(context.Background(), j.ID, Actor("worker-1"), j.DeliveryConfirmationCode)
	if err != nil {
		t.Fatalf("confirm delivery: %v", err)
	}
	if res.Job.Status != StatusDelivered {
		t.Errorf("expected status delivered, got %q", res.Job.Status)
	}
	if res.Job.DeliveredAt == nil {
		t.Errorf("expected deliveredAt to be set")
	}
	if got := res.Payout.String(); got != "11.88" {
		t.Errorf("expected payout 11.88, got %s", got)
	}
	if len(rep.completed) != 1 || rep.completed[0] != "worker-1" {
		t.Errorf("expected completed-jobs increment for worker-1, got %v", rep.completed)
	}
}

func TestConfirmDelivery_RequiresPickedUp(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	_, err := svc.ConfirmDelivery(context.Background(), j.ID, Actor("worker-1"), j.DeliveryConfirmationCode)
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("expected conflict before pickup, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)

	_, err := svc.Cancel(context.Background(), j.ID, Actor("worker-1"))
	if !fault.IsKind(err, fault.Forbidden) {
		t.Fatalf("expected forbidden for non-customer, got %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), j.ID, Actor("customer-1"))
	if err != nil {
		t.Fatalf("cancel job: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected status cancelled, got %q", cancelled.Status)
	}
}

func TestCancel_AcceptedJobConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	_, err := svc.Cancel(context.Background(), j.ID, Actor("customer-1"))
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func deliverJob(t *testing.T, svc *Service, j Job) {
	t.Helper()
	mustAccept(t, svc, j.ID)
	if _, err := svc.ConfirmPickup(context.Background(), j.ID, Actor("worker-1")); err != nil {
		t.Fatalf("confirm pickup: %v", err)
	}
	if _, err := svc.ConfirmDelivery(context.Background(), j.ID, Actor("worker-1"), j.DeliveryConfirmationCode); err != nil {
		t.Fatalf("confirm delivery: %v", err)
	}
}

func TestRate_RecordsOnceAndRecomputes(t *testing.T) {
	svc, _, rep := newTestService(t)
	j := mustCreate(t, svc)
	deliverJob(t, svc, j)

	rated, err := svc.Rate(context.Background(), j.ID, Actor("customer-1"), 4)
	if err != nil {
		t.Fatalf("rate job: %v", err)
	}
	if rated.GigWorkerRating == nil || *rated.GigWorkerRating != 4 {
		t.Errorf("expected rating 4 to be recorded")
	}
	if len(rep.recomputed) != 1 || rep.recomputed[0] != "worker-1" {
		t.Errorf("expected rating recompute for worker-1, got %v", rep.recomputed)
	}

	_, err = svc.Rate(context.Background(), j.ID, Actor("customer-1"), 5)
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("expected conflict on second rating, got %v", err)
	}
}

func TestRate_CustomerWalletActor(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	deliverJob(t, svc, j)

	if _, err := svc.Rate(context.Background(), j.ID, Actor("0xcustomer"), 5); err != nil {
		t.Fatalf("expected wallet identity to match customer, got %v", err)
	}
}

func TestRate_Guards(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)

	if _, err := svc.Rate(context.Background(), j.ID, Actor("customer-1"), 0); !fault.IsKind(err, fault.Validation) {
		t.Errorf("expected validation for rating 0, got %v", err)
	}
	if _, err := svc.Rate(context.Background(), j.ID, Actor("customer-1"), 6); !fault.IsKind(err, fault.Validation) {
		t.Errorf("expected validation for rating 6, got %v", err)
	}
	if _, err := svc.Rate(context.Background(), j.ID, Actor("worker-1"), 3); !fault.IsKind(err, fault.Forbidden) {
		t.Errorf("expected forbidden for non-customer, got %v", err)
	}
	if _, err := svc.Rate(context.Background(), j.ID, Actor("customer-1"), 3); !fault.IsKind(err, fault.Conflict) {
		t.Errorf("expected conflict for undelivered job, got %v", err)
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.List(context.Background(), Filters{Status: "floating"})
	if !fault.IsKind(err, fault.Validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListAvailable_OnlyOpenAndPaid(t *testing.T) {
	svc, _, _ := newTestService(t)

	mustCreate(t, svc) // unpaid, stays invisible
	paid := mustCreate(t, svc)
	mustPay(t, svc, paid.ID)
	taken := mustCreate(t, svc)
	mustPay(t, svc, taken.ID)
	mustAccept(t, svc, taken.ID)

	available, err := svc.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 || available[0].ID != paid.ID {
		t.Fatalf("expected only the paid open job, got %d jobs", len(available))
	}
}

func TestListForActor_MatchesEitherSide(t *testing.T) {
	svc, _, _ := newTestService(t)
	j := mustCreate(t, svc)
	mustAccept(t, svc, j.ID)

	for _, actor := range []Actor{"customer-1", "0xcustomer", "worker-1", "0xworker"} {
		jobs, err := svc.ListForActor(context.Background(), actor)
		if err != nil {
			t.Fatalf("list for actor %q: %v", actor, err)
		}
		if len(jobs) != 1 {
			t.Errorf("expected actor %q to see the job, got %d", actor, len(jobs))
		}
	}

	jobs, err := svc.ListForActor(context.Background(), Actor("stranger"))
	if err != nil {
		t.Fatalf("list for stranger: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected stranger to see no jobs, got %d", len(jobs))
	}
}
