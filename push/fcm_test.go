package push

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"

	"github.com/Dosada05/intramural-draws/models"
)

type fakeTokenRepo struct {
	tokens  map[int][]string
	deleted []string
}

func (f *fakeTokenRepo) Upsert(ctx context.Context, token *models.DeviceToken) error { return nil }

func (f *fakeTokenRepo) ListTokensByUsers(ctx context.Context, userIDs []int) ([]string, error) {
	out := []string{}
	for _, id := range userIDs {
		out = append(out, f.tokens[id]...)
	}
	return out, nil
}

func (f *fakeTokenRepo) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	f.deleted = append(f.deleted, tokens...)
	return int64(len(tokens)), nil
}

type fakeMulticast struct {
	invalid map[string]bool
	err     error
	calls   []*messaging.MulticastMessage
}

func (f *fakeMulticast) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.calls = append(f.calls, msg)
	if f.err != nil {
		return nil, f.err
	}
	resp := &messaging.BatchResponse{}
	for _, tok := range msg.Tokens {
		if f.invalid[tok] {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: false, Error: errors.New("unregistered")})
		} else {
			resp.SuccessCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "m-" + tok})
		}
	}
	return resp, nil
}

func TestFCMSender_PrunesFailedTokens(t *testing.T) {
	repo := &fakeTokenRepo{tokens: map[int][]string{1: {"a", "b"}, 2: {"c"}}}
	client := &fakeMulticast{invalid: map[string]bool{"b": true}}
	s := newFCMSender(client, repo, nil)

	res, err := s.Send(context.Background(), []int{1, 2}, "Match Scheduled", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 2 {
		t.Errorf("Sent = %d, want 2", res.Sent)
	}
	if len(res.FailedTokens) != 1 || res.FailedTokens[0] != "b" {
		t.Errorf("FailedTokens = %v, want [b]", res.FailedTokens)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "b" {
		t.Errorf("deleted = %v, want [b]", repo.deleted)
	}
	if got := client.calls[0].Notification.Title; got != "Match Scheduled" {
		t.Errorf("title = %q", got)
	}
}

func TestFCMSender_NoTokensIsNoop(t *testing.T) {
	client := &fakeMulticast{}
	s := newFCMSender(client, &fakeTokenRepo{}, nil)

	if _, err := s.Send(context.Background(), []int{5}, "t", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("expected no FCM calls, got %d", len(client.calls))
	}
}

func TestFCMSender_AllTokensInvalidIsDeliveryError(t *testing.T) {
	repo := &fakeTokenRepo{tokens: map[int][]string{1: {"x"}}}
	s := newFCMSender(&fakeMulticast{invalid: map[string]bool{"x": true}}, repo, nil)

	_, err := s.Send(context.Background(), []int{1}, "t", "b")
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("got %v, want ErrDelivery", err)
	}
	var de *DeliveryError
	if !errors.As(err, &de) || len(de.UserIDs) != 1 {
		t.Errorf("expected DeliveryError with user ids, got %#v", err)
	}
	if len(repo.deleted) != 1 {
		t.Errorf("invalid token should still be pruned, deleted=%v", repo.deleted)
	}
}

func TestFCMSender_ProviderError(t *testing.T) {
	repo := &fakeTokenRepo{tokens: map[int][]string{1: {"x"}}}
	s := newFCMSender(&fakeMulticast{err: errors.New("unavailable")}, repo, nil)

	if _, err := s.Send(context.Background(), []int{1}, "t", "b"); !errors.Is(err, ErrDelivery) {
		t.Fatalf("got %v, want ErrDelivery", err)
	}
}
