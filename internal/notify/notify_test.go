package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

type recorder struct {
	got []models.Notification
	err error
}

func (r *recorder) Notify(_ context.Context, ns []models.Notification) error {
	r.got = append(r.got, ns...)
	return r.err
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	failing := &recorder{err: errors.New("broker down")}
	ok := &recorder{}

	err := Multi{failing, ok}.Notify(ctx, []models.Notification{{Member: "alice", Message: "hi"}})
	if err == nil {
		t.Fatal("Expected joined error from failing notifier")
	}
	if len(ok.got) != 1 {
		t.Errorf("Expected later notifiers to still run, got %d", len(ok.got))
	}
}

func TestInbox_FillsIDsForLaterNotifiers(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	after := &recorder{}

	ns := []models.Notification{
		{Member: "alice", Message: "bob settled 10.00 USD with you", Type: models.NotificationSettlement},
	}
	if err := (Multi{NewInbox(store), after}).Notify(ctx, ns); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if after.got[0].ID == "" || after.got[0].CreatedAt == 0 {
		t.Errorf("Expected inbox to fill ID and CreatedAt, got %+v", after.got[0])
	}
	list, err := store.ListNotifications(ctx, "alice", true)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(list) != 1 || list[0].Type != models.NotificationSettlement {
		t.Errorf("Expected stored settlement notification, got %v", list)
	}
}

func TestNewMessage(t *testing.T) {
	n := models.Notification{
		ID:        "ntf_01h455vb4pex5vsknk084sn02q",
		Member:    "alice",
		Message:   "bob added you to Trip",
		Type:      models.NotificationGroupAdd,
		CreatedAt: 1700000000,
	}
	body, err := json.Marshal(newMessage(n))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"id":"ntf_01h455vb4pex5vsknk084sn02q","member":"alice","type":"GROUP_ADD","message":"bob added you to Trip","created_at":1700000000}`
	if string(body) != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		typ  models.NotificationType
		want string
	}{
		{models.NotificationGroupAdd, "notification.group_add"},
		{models.NotificationExpenseAdd, "notification.expense_add"},
		{models.NotificationSettlement, "notification.settlement"},
		{models.NotificationSystem, "notification.system"},
	}
	for _, tt := range tests {
		if got := RoutingKey(tt.typ); got != tt.want {
			t.Errorf("RoutingKey(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestPublishing(t *testing.T) {
	n := models.Notification{
		ID:        "ntf_01h455vb4pex5vsknk084sn02q",
		Member:    "alice",
		Message:   "bob settled 10.00 USD with you",
		Type:      models.NotificationSettlement,
		CreatedAt: 1700000000,
	}
	msg, err := publishing(n)
	if err != nil {
		t.Fatalf("publishing failed: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp091.Persistent {
		t.Errorf("Expected persistent JSON message, got %q mode %d", msg.ContentType, msg.DeliveryMode)
	}
	if msg.MessageId != n.ID || msg.Type != "SETTLEMENT" || msg.Timestamp.Unix() != n.CreatedAt {
		t.Errorf("Unexpected message headers: id=%q type=%q ts=%v", msg.MessageId, msg.Type, msg.Timestamp)
	}

	var got Message
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Member != "alice" || got.Message != n.Message {
		t.Errorf("Unexpected body %+v", got)
	}
}
