package chat

import (
	"testing"

	chatmodel "github.com/anthonytapias/charmefy/internal/model/chat"
)

func TestStreamIDsAreStrictlyIncreasing(t *testing.T) {
	var s Stream
	a := s.AppendUser("one")
	b := s.AppendPartner("two")
	c := s.AppendUser("three")

	if a.ID != 1 || b.ID != 2 || c.ID != 3 {
		t.Fatalf("unexpected ids %d %d %d", a.ID, b.ID, c.ID)
	}
}

func TestStreamResetRestartsIDs(t *testing.T) {
	var s Stream
	s.AppendUser("one")
	s.AppendPartner("two")
	s.Reset()

	if s.Len() != 0 {
		t.Fatalf("expected empty log after reset, got %d", s.Len())
	}
	if msg := s.AppendUser("again"); msg.ID != 1 {
		t.Fatalf("expected id 1 after reset, got %d", msg.ID)
	}
}

func TestStreamHistoryIsAuthoritative(t *testing.T) {
	var s Stream
	s.AppendUser("typed before history arrived")

	s.ReplaceWithHistory([]chatmodel.HistoryMessage{
		{Sender: "user", Content: "hello"},
		{Sender: "character", Content: "hi"},
		{Sender: "character", Content: "*smiles* good to see you"},
	})

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, msg := range msgs {
		if msg.ID != i+1 {
			t.Fatalf("message %d has id %d", i, msg.ID)
		}
	}
	if msgs[0].Sender != chatmodel.SenderUser || msgs[1].Sender != chatmodel.SenderPartner {
		t.Fatalf("unexpected senders: %+v", msgs)
	}
	if msgs[2].Annotation != chatmodel.AnnotationComposite {
		t.Fatalf("narration in partner text must be annotated, got %v", msgs[2].Annotation)
	}
}

func TestStreamAnnotatesOnlyPartnerNarration(t *testing.T) {
	var s Stream
	user := s.AppendUser("*waves* hello")
	plain := s.AppendPartner("hello back")
	mixed := s.AppendPartner("*leans in* tell me more")

	if user.Annotation != chatmodel.AnnotationNone {
		t.Fatalf("user messages are never annotated, got %v", user.Annotation)
	}
	if plain.Annotation != chatmodel.AnnotationNone {
		t.Fatalf("plain dialogue must not be annotated, got %v", plain.Annotation)
	}
	if mixed.Annotation != chatmodel.AnnotationComposite {
		t.Fatalf("mixed reply must be annotated, got %v", mixed.Annotation)
	}
}

func TestStreamMessagesReturnsCopy(t *testing.T) {
	var s Stream
	s.AppendUser("one")

	msgs := s.Messages()
	msgs[0].Content = "mutated"

	if got := s.Messages()[0].Content; got != "one" {
		t.Fatalf("log aliased by caller mutation: %q", got)
	}
}
