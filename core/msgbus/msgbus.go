package msgbus

import (
	"sync"
	"sync/atomic"

	"npr/common"
)

var defaultTopicSize int = 100

type BusMessage struct {
	Type common.EventType
	// Source names the publisher, e.g. the classifier being trained.
	Source  string
	Payload interface{}
}

// Subscriber implementations must be comparable; Register deduplicates with ==.
type Subscriber interface {
	HandleMsgFromMsgBus(msg *BusMessage) error
}

type MessageBus interface {
	Register(topic common.EventType, sub Subscriber)
	UnRegister(topic common.EventType, sub Subscriber)
	Publish(source string, t common.EventType, payload interface{})
	Reset()
}

type Topic interface {
	Register(sub Subscriber)
	UnRegister(sub Subscriber)
	Publish(msg *BusMessage)
	Stop()
}

type topicImpl struct {
	msgChan chan *BusMessage
	subs    atomic.Value //[]Subscriber
	mutex   sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
	log      common.Logger
}

func newTopic(size int, log common.Logger) Topic {
	t := &topicImpl{
		msgChan: make(chan *BusMessage, size),
		stop:    make(chan struct{}),
		log:     log,
	}
	t.subs.Store([]Subscriber{})
	go t.handlePublish()
	return t
}

func (t *topicImpl) Register(sub Subscriber) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subs := t.subs.Load().([]Subscriber)
	for _, s := range subs {
		if s == sub {
			return
		}
	}
	newSubs := make([]Subscriber, 0, len(subs)+1)
	newSubs = append(newSubs, subs...)
	t.subs.Store(append(newSubs, sub))
}

func (t *topicImpl) UnRegister(sub Subscriber) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subs := t.subs.Load().([]Subscriber)
	for i, s := range subs {
		if s == sub {
			newSubs := make([]Subscriber, 0, len(subs)-1)
			newSubs = append(newSubs, subs[:i]...)
			t.subs.Store(append(newSubs, subs[i+1:]...))
			return
		}
	}
}

// Publish blocks only while the topic buffer is full; it drops the message once the topic is stopped.
func (t *topicImpl) Publish(msg *BusMessage) {
	select {
	case <-t.stop:
	case t.msgChan <- msg:
	}
}

func (t *topicImpl) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *topicImpl) handlePublish() {
	for {
		select {
		case <-t.stop:
			return
		case msg := <-t.msgChan:
			subs := t.subs.Load().([]Subscriber)
			for _, sub := range subs {
				go func(sub Subscriber) {
					if err := sub.HandleMsgFromMsgBus(msg); err != nil {
						t.log.Warnf("subscriber failed on event %#x from %s: %s", msg.Type, msg.Source, err)
					}
				}(sub)
			}
		}
	}
}

type messageBusImpl struct {
	topics sync.Map // first-class EventType -> Topic
	mutex  sync.Mutex
	log    common.Logger
}

// NewMessageBus creates a bus. Subscribers register on a first-class event type
// and receive every sub-type of it.
func NewMessageBus(log common.Logger) MessageBus {
	if log == nil {
		log = common.NopLogger()
	}
	return &messageBusImpl{log: log}
}

func (mb *messageBusImpl) Register(topic common.EventType, sub Subscriber) {
	firstClassTopic := topic.Type()
	mb.mutex.Lock()
	defer mb.mutex.Unlock()
	if v, ok := mb.topics.Load(firstClassTopic); ok {
		v.(Topic).Register(sub)
		return
	}
	t := newTopic(defaultTopicSize, mb.log)
	t.Register(sub)
	mb.topics.Store(firstClassTopic, t)
}

func (mb *messageBusImpl) UnRegister(topic common.EventType, sub Subscriber) {
	firstClassTopic := topic.Type()
	v, ok := mb.topics.Load(firstClassTopic)
	if !ok {
		return
	}
	v.(Topic).UnRegister(sub)
}

func (mb *messageBusImpl) Publish(source string, topic common.EventType, payload interface{}) {
	firstClassTopic := topic.Type()
	v, ok := mb.topics.Load(firstClassTopic)
	if !ok {
		mb.log.Debugf("no subscriber for event type %#x", firstClassTopic)
		return
	}
	v.(Topic).Publish(&BusMessage{Type: topic, Source: source, Payload: payload})
}

func (mb *messageBusImpl) Reset() {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()
	mb.topics.Range(func(k, v interface{}) bool {
		v.(Topic).Stop()
		mb.topics.Delete(k)
		return true
	})
}
