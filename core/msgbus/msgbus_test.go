package msgbus

import (
	"testing"
	"time"

	"npr/common"
	"npr/test/mock"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSubscriber struct {
	ch  chan *BusMessage
	err error
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{ch: make(chan *BusMessage, 16)}
}

func (s *chanSubscriber) HandleMsgFromMsgBus(msg *BusMessage) error {
	s.ch <- msg
	return s.err
}

func (s *chanSubscriber) next(t *testing.T) *BusMessage {
	select {
	case msg := <-s.ch:
		return msg
	case <-time.After(time.Second):
		require.FailNow(t, "no message delivered")
		return nil
	}
}

func TestMessageBus_SubTypesReachTopicSubscriber(t *testing.T) {
	mb := NewMessageBus(nil)
	defer mb.Reset()
	sub := newChanSubscriber()
	mb.Register(common.TrainEvent, sub)

	mb.Publish("knn", common.TrainEvent_Finished, 3*time.Millisecond)
	msg := sub.next(t)
	assert.Equal(t, common.TrainEvent_Finished, msg.Type)
	assert.Equal(t, "knn", msg.Source)
	assert.Equal(t, 3*time.Millisecond, msg.Payload)
}

func TestMessageBus_OtherTopicNotDelivered(t *testing.T) {
	mb := NewMessageBus(nil)
	defer mb.Reset()
	sub := newChanSubscriber()
	mb.Register(common.EvaluateEvent, sub)

	mb.Publish("svm", common.TrainEvent_Started, nil)
	mb.Publish("svm", common.EvaluateEvent_Finished, "done")
	msg := sub.next(t)
	assert.Equal(t, common.EvaluateEvent_Finished, msg.Type)
}

func TestMessageBus_RegisterTwiceDeliversOnce(t *testing.T) {
	mb := NewMessageBus(nil)
	defer mb.Reset()
	sub := newChanSubscriber()
	mb.Register(common.TrainEvent, sub)
	mb.Register(common.TrainEvent_Started, sub)

	mb.Publish("ann", common.TrainEvent_Started, nil)
	sub.next(t)
	select {
	case <-sub.ch:
		assert.Fail(t, "duplicate delivery")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMessageBus_UnRegister(t *testing.T) {
	mb := NewMessageBus(nil)
	defer mb.Reset()
	kept, dropped := newChanSubscriber(), newChanSubscriber()
	mb.Register(common.TrainEvent, kept)
	mb.Register(common.TrainEvent, dropped)
	mb.UnRegister(common.TrainEvent, dropped)

	mb.Publish("adaboost", common.TrainEvent_Started, nil)
	kept.next(t)
	select {
	case <-dropped.ch:
		assert.Fail(t, "unregistered subscriber got a message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMessageBus_SubscriberErrorIsLogged(t *testing.T) {
	log := mock.GetMockLogger("bus")
	mb := NewMessageBus(log)
	defer mb.Reset()
	sub := newChanSubscriber()
	sub.err = errors.New("boom")
	mb.Register(common.TrainEvent, sub)

	mb.Publish("knn", common.TrainEvent_Failed, nil)
	sub.next(t)
	assert.Eventually(t, func() bool { return log.Contains("boom") }, time.Second, 10*time.Millisecond)
}

func TestMessageBus_PublishAfterResetDoesNotBlock(t *testing.T) {
	mb := NewMessageBus(nil)
	mb.Register(common.TrainEvent, newChanSubscriber())
	mb.Reset()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2*defaultTopicSize; i++ {
			mb.Publish("knn", common.TrainEvent_Started, nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "publish blocked after reset")
	}
}
