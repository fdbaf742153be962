package kds

import "github.com/aquamarinepk/aqm"

// Cue is an audible signal the board asks the host to play.
type Cue string

const (
	CueNewOrder      Cue = "new_order"
	CueItemComplete  Cue = "item_complete"
	CueOrderComplete Cue = "order_complete"
	CuePrint         Cue = "print"
)

type Notifier interface {
	Play(cue Cue)
}

// LogNotifier records cues in the log. It is used when no audio device is
// attached.
type LogNotifier struct {
	logger aqm.Logger
}

func NewLogNotifier(logger aqm.Logger) *LogNotifier {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Play(cue Cue) {
	n.logger.Info("sound cue", "cue", string(cue))
}

func playCue(store *Store, notifier Notifier, cue Cue) {
	if notifier == nil || !store.State().SoundEnabled {
		return
	}
	notifier.Play(cue)
}
