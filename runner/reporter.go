package runner

import (
	"sync"
	"time"

	"npr/common"
	"npr/core/ml"
	"npr/core/msgbus"
)

// reporter logs training and evaluation events as they arrive on the bus.
type reporter struct {
	log common.Logger

	mutex  sync.Mutex
	counts map[common.EventType]int
}

func newReporter(log common.Logger) *reporter {
	return &reporter{log: log, counts: make(map[common.EventType]int)}
}

func (rp *reporter) HandleMsgFromMsgBus(msg *msgbus.BusMessage) error {
	rp.mutex.Lock()
	rp.counts[msg.Type]++
	rp.mutex.Unlock()

	switch msg.Type {
	case common.TrainEvent_Started:
		rp.log.Infof("%s: training started", msg.Source)
	case common.TrainEvent_Finished:
		d, _ := msg.Payload.(time.Duration)
		rp.log.Infof("%s: training finished in %s", msg.Source, d)
	case common.TrainEvent_Failed:
		rp.log.Errorf("%s: training failed: %v", msg.Source, msg.Payload)
	case common.EvaluateEvent_Failed:
		rp.log.Errorf("%s: evaluation failed: %v", msg.Source, msg.Payload)
	case common.EvaluateEvent_Finished:
		if s, ok := msg.Payload.(ml.Score); ok {
			rp.log.Infof("%s: correct ratio %.4f (%d/%d)", msg.Source, s.Accuracy, s.Hits, s.Total)
		}
	}
	return nil
}

func (rp *reporter) count(t common.EventType) int {
	rp.mutex.Lock()
	defer rp.mutex.Unlock()
	return rp.counts[t]
}
