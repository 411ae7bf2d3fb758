package runner

import (
	"strings"
	"sync"
	"time"

	"npr/common"
	"npr/core/config"
	"npr/core/dataset"
	"npr/core/ml"
	"npr/core/msgbus"

	"github.com/pkg/errors"
)

// Result is the outcome of training one classifier and scoring it on the validation set.
type Result struct {
	Type       common.ClassifierType
	Classifier ml.Classifier
	Score      ml.Score
	TrainTime  time.Duration
}

// Runner drives classifiers over one generated Problem. The problem is shared read-only,
// so several classifiers may train on it at once.
type Runner struct {
	conf     *config.LocalConfig
	problem  *ml.Problem
	msgBus   msgbus.MessageBus
	reporter *reporter
	log      common.Logger
}

func (r *Runner) Init(c *config.LocalConfig) error {
	r.conf = c

	logConfig, err := c.LogConfig()
	if err != nil {
		return errors.Wrap(err, "get log config")
	}
	common.SetLogConfig(logConfig)
	r.log = common.GetLogger(common.MODULE_RUNNER)

	pt, err := dataset.ParseProblemType(c.Problem.Type)
	if err != nil {
		return err
	}
	factory := dataset.NewProblemFactory(common.GetLogger(common.MODULE_DATASET))
	r.problem, err = factory.CreateClassificationProblem(pt, dataset.Options{
		TrainCount:      c.Problem.TrainCount,
		ValidationCount: c.Problem.ValidationCount,
		Seed:            c.Problem.Seed,
	})
	if err != nil {
		return errors.Wrap(err, "create problem")
	}

	r.msgBus = msgbus.NewMessageBus(r.log)
	r.reporter = newReporter(r.log)
	r.msgBus.Register(common.TrainEvent, r.reporter)
	r.msgBus.Register(common.EvaluateEvent, r.reporter)
	return nil
}

func (r *Runner) Problem() *ml.Problem {
	return r.problem
}

func (r *Runner) Stop() {
	if r.msgBus != nil {
		r.msgBus.Reset()
	}
}

func newKernel(c config.SVMSection) (ml.Kernel, error) {
	switch strings.ToLower(c.Kernel) {
	case "rbf", "gaussian":
		return ml.NewGaussianRBFKernel(c.Gamma), nil
	case "linear":
		return ml.LinearKernel{}, nil
	case "poly", "polynomial":
		return ml.PolynomialKernel{Gamma: c.Gamma, Coef0: c.Coef0, Degree: c.Degree}, nil
	case "sigmoid":
		return ml.SigmoidKernel{Gamma: c.Gamma, Coef0: c.Coef0}, nil
	default:
		return nil, errors.Errorf("unknown kernel %q", c.Kernel)
	}
}

// NewClassifier builds an untrained classifier from the configuration, bound to the training set.
func (r *Runner) NewClassifier(t common.ClassifierType) (ml.Classifier, error) {
	tSet := r.problem.TrainingSet
	switch t {
	case common.CLASSIFIER_KNN:
		c := ml.NewKNN(tSet, r.conf.KNN.K)
		c.Log = common.GetLogger(common.MODULE_KNN)
		return c, nil
	case common.CLASSIFIER_SVM:
		kernel, err := newKernel(r.conf.SVM)
		if err != nil {
			return nil, err
		}
		c := ml.NewBinarySVM(tSet, kernel)
		c.C = r.conf.SVM.C
		c.Tolerance = r.conf.SVM.Tolerance
		c.Epsilon = r.conf.SVM.Epsilon
		c.MaxIterations = r.conf.SVM.MaxIterations
		c.Log = common.GetLogger(common.MODULE_SVM)
		return c, nil
	case common.CLASSIFIER_ANN:
		c := ml.NewANNBP(r.problem.Dimension, tSet)
		if r.conf.ANN.Hidden > 0 {
			c.Hidden = r.conf.ANN.Hidden
		}
		c.MaximumIteration = r.conf.ANN.MaximumIteration
		c.Eta = r.conf.ANN.Eta
		c.Epsilon = r.conf.ANN.Epsilon
		c.LogInterval = r.conf.ANN.LogInterval
		c.Seed = r.conf.ANN.Seed
		c.Log = common.GetLogger(common.MODULE_ANN)
		return c, nil
	case common.CLASSIFIER_ADABOOST:
		c := ml.NewAdaBoost(tSet, r.conf.Boost.Rounds, r.problem.Dimension)
		c.Log = common.GetLogger(common.MODULE_BOOST)
		return c, nil
	default:
		return nil, errors.Errorf("unknown classifier type %d", t)
	}
}

// Run trains one classifier and scores it on the validation set.
func (r *Runner) Run(t common.ClassifierType) (*Result, error) {
	c, err := r.NewClassifier(t)
	if err != nil {
		return nil, err
	}
	r.msgBus.Publish(t.String(), common.TrainEvent_Started, nil)

	start := time.Now()
	if err = c.Train(); err != nil {
		r.msgBus.Publish(t.String(), common.TrainEvent_Failed, err)
		return nil, errors.Wrapf(err, "train %s", t)
	}
	res := &Result{Type: t, Classifier: c, TrainTime: time.Since(start)}
	r.msgBus.Publish(t.String(), common.TrainEvent_Finished, res.TrainTime)

	res.Score, err = ml.EvaluateParallel(c, r.problem.ValidationSet, 0)
	if err != nil {
		r.msgBus.Publish(t.String(), common.EvaluateEvent_Failed, err)
		return nil, errors.Wrapf(err, "evaluate %s", t)
	}
	r.msgBus.Publish(t.String(), common.EvaluateEvent_Finished, res.Score)
	return res, nil
}

// RunAll trains every requested classifier concurrently. Results keep the order of types.
func (r *Runner) RunAll(types []common.ClassifierType) ([]*Result, error) {
	results := make([]*Result, len(types))
	errs := make([]error, len(types))
	var wg sync.WaitGroup
	for i, t := range types {
		wg.Add(1)
		go func(i int, t common.ClassifierType) {
			defer wg.Done()
			results[i], errs[i] = r.Run(t)
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
