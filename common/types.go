package common

import (
	"strings"

	"github.com/pkg/errors"
)

type EventType uint32

func (et *EventType) Type() EventType {
	return (*et) & (0xff00)
}

func (et *EventType) SubType() EventType {
	return (*et) & (0x00ff)
}

// |--type--|-subtype-|
// 0000 0000 0000 0000
const (
	NoUseEvent             EventType = 0
	TrainEvent             EventType = 1 << 8
	TrainEvent_Started     EventType = TrainEvent | 1
	TrainEvent_Finished    EventType = TrainEvent | 2
	TrainEvent_Failed      EventType = TrainEvent | 3
	EvaluateEvent          EventType = 2 << 8
	EvaluateEvent_Finished EventType = EvaluateEvent | 1
	EvaluateEvent_Failed   EventType = EvaluateEvent | 2
)

type ClassifierType int

const (
	CLASSIFIER_KNN ClassifierType = iota
	CLASSIFIER_SVM
	CLASSIFIER_ANN
	CLASSIFIER_ADABOOST
)

var (
	ClassifierType_Name = map[ClassifierType]string{
		CLASSIFIER_KNN:      "knn",
		CLASSIFIER_SVM:      "svm",
		CLASSIFIER_ANN:      "ann",
		CLASSIFIER_ADABOOST: "adaboost",
	}
	ClassifierType_Value = map[string]ClassifierType{
		"knn":      CLASSIFIER_KNN,
		"svm":      CLASSIFIER_SVM,
		"ann":      CLASSIFIER_ANN,
		"adaboost": CLASSIFIER_ADABOOST,
	}
)

// AllClassifiers lists every classifier in a fixed order.
var AllClassifiers = []ClassifierType{CLASSIFIER_KNN, CLASSIFIER_SVM, CLASSIFIER_ANN, CLASSIFIER_ADABOOST}

func (ct ClassifierType) String() string {
	if name, ok := ClassifierType_Name[ct]; ok {
		return name
	}
	return "unknown"
}

func ParseClassifierType(name string) (ClassifierType, error) {
	ct, ok := ClassifierType_Value[strings.ToLower(name)]
	if !ok {
		return 0, errors.Errorf("unknown classifier %q", name)
	}
	return ct, nil
}
