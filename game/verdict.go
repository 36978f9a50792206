package game

import (
	"github.com/wfunc/drawparty/room"
	"github.com/wfunc/drawparty/topic"
)

// VerdictKind tells the gateway which message a chat submission becomes.
type VerdictKind int

const (
	VerdictChat VerdictKind = iota
	VerdictCorrect
	VerdictIncorrect
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	default:
		return "chat"
	}
}

// Verdict is the outcome of JudgeMessage. Answer holds the matched main
// text for a correct answer. Seq orders the resulting broadcast.
type Verdict struct {
	Kind   VerdictKind
	Answer string
	Seq    uint64
}

// JudgeMessage decides under the room lock whether a submission is a
// plain chat line or an answer to check. Only answer submissions from a
// non-drawer while a round is being played are judged.
func (c *Coordinator) JudgeMessage(r *room.Room, senderID, text string, isAnswer bool) Verdict {
	var v Verdict
	snap, _ := r.Mutate(func(tx *room.Tx) bool {
		g := tx.Game()
		if !isAnswer || g == nil || !g.Playing() {
			return true
		}
		if drawer, _ := g.DrawerID(); drawer == senderID {
			return true
		}
		t, ok := g.Topic()
		if ok && topic.Correct(text, t) {
			v.Kind = VerdictCorrect
			v.Answer = t.Main
		} else {
			v.Kind = VerdictIncorrect
		}
		return true
	})
	v.Seq = snap.Seq
	return v
}
