package styles

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"codecraft-studio/types"
)

type fakeLearning struct {
	rec types.LearningRecord
	ok  bool
	err error
}

func (f *fakeLearning) LookupLearning(theme string) (types.LearningRecord, bool, error) {
	return f.rec, f.ok, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestSelectVoiceKeywords(t *testing.T) {
	s := New(nil, quietLogger())
	cases := []struct {
		theme string
		want  string
	}{
		{"epic battle of kings", VoiceHeroicMale},
		{"the war within", VoiceHeroicMale},
		{"sacred journey home", VoiceChoir},
		{"divine intervention", VoiceChoir},
		{"love and heart", VoiceSoprano},
		{"the secret garden", VoiceWhisper},
		{"unremarkable theme", VoiceHeroicMale}, // default
	}
	for _, c := range cases {
		if got := s.SelectVoice(c.theme, ""); got != c.want {
			t.Errorf("SelectVoice(%q) = %s, want %s", c.theme, got, c.want)
		}
	}
}

func TestSelectVoicePriorityOrder(t *testing.T) {
	s := New(nil, quietLogger())
	// battle keywords outrank sacred ones when both appear
	if got := s.SelectVoice("sacred battle", ""); got != VoiceHeroicMale {
		t.Errorf("SelectVoice(sacred battle) = %s, want %s", got, VoiceHeroicMale)
	}
}

func TestSelectMusicKeywords(t *testing.T) {
	s := New(nil, quietLogger())
	cases := []struct {
		theme string
		want  string
	}{
		{"gladiator arena", MusicGladiator},
		{"sacred prayer", MusicGregorian},
		{"dark shadow realm", MusicDark},
		{"magic forest", MusicFantasy},
		{"emotional farewell", MusicEmotional},
		{"modern pop anthem", MusicPop},
		{"tale of heroes", MusicEpic}, // default
	}
	for _, c := range cases {
		if got := s.SelectMusic(c.theme, ""); got != c.want {
			t.Errorf("SelectMusic(%q) = %s, want %s", c.theme, got, c.want)
		}
	}
}

func TestSelectMusicLearnedMatchWins(t *testing.T) {
	learning := &fakeLearning{
		rec: types.LearningRecord{Theme: "gladiator", MusicStyle: MusicEmotional},
		ok:  true,
	}
	s := New(learning, quietLogger())
	// keywords would say gladiator, learning says emotional
	if got := s.SelectMusic("gladiator arena", ""); got != MusicEmotional {
		t.Errorf("learned match ignored: got %s", got)
	}
}

func TestSelectMusicIgnoresUnknownLearnedStyle(t *testing.T) {
	learning := &fakeLearning{
		rec: types.LearningRecord{Theme: "gladiator", MusicStyle: "dubstep"},
		ok:  true,
	}
	s := New(learning, quietLogger())
	if got := s.SelectMusic("gladiator arena", ""); got != MusicGladiator {
		t.Errorf("unknown learned style should fall through to keywords, got %s", got)
	}
}

func TestSelectMusicLearningErrorFallsBack(t *testing.T) {
	learning := &fakeLearning{err: errors.New("db down")}
	s := New(learning, quietLogger())
	if got := s.SelectMusic("dark shadow", ""); got != MusicDark {
		t.Errorf("lookup error should fall back to keywords, got %s", got)
	}
}
