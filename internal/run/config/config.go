package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/w-h-a/shiplog/internal/clients/runner"
	"github.com/w-h-a/shiplog/internal/clients/sink"
)

var (
	instance *config
	once     sync.Once
)

type config struct {
	env            string
	name           string
	version        string
	runner         string
	runnerHost     string
	stopTimeout    time.Duration
	sink           string
	sinkMaxRetries int
	tracesAddress  string
	metricsAddress string
}

func New() {
	once.Do(func() {
		instance = &config{
			env:            "dev",
			name:           "shiplog",
			version:        "0.1.0-alpha.0",
			runner:         "docker",
			runnerHost:     "unix:///var/run/docker.sock",
			stopTimeout:    10 * time.Second,
			sink:           "cloudwatch",
			sinkMaxRetries: 5,
		}

		env := os.Getenv("ENV")
		if len(env) > 0 {
			instance.env = env
		}

		name := os.Getenv("NAME")
		if len(name) > 0 {
			instance.name = name
		}

		version := os.Getenv("VERSION")
		if len(version) > 0 {
			instance.version = version
		}

		r := os.Getenv("RUNNER")
		if len(r) > 0 {
			if _, ok := runner.RuntimeTypes[r]; ok {
				instance.runner = r
			} else {
				panic("unsupported runner")
			}
		}

		runnerHost := os.Getenv("RUNNER_HOST")
		if len(runnerHost) > 0 {
			instance.runnerHost = runnerHost
		}

		stopTimeout := os.Getenv("STOP_TIMEOUT")
		if len(stopTimeout) > 0 {
			dur, err := time.ParseDuration(stopTimeout)
			if err != nil {
				panic("invalid stop timeout")
			}
			if dur <= 0 {
				panic("stop timeout must be a positive duration")
			}
			instance.stopTimeout = dur
		}

		k := os.Getenv("SINK")
		if len(k) > 0 {
			if _, ok := sink.SinkTypes[k]; ok {
				instance.sink = k
			} else {
				panic("unsupported sink")
			}
		}

		sinkMaxRetries := os.Getenv("SINK_MAX_RETRIES")
		if len(sinkMaxRetries) > 0 {
			n, err := strconv.Atoi(sinkMaxRetries)
			if err != nil {
				panic("sink max retries is not an integer")
			}
			if n < 1 {
				panic("sink max retries must be at least 1")
			}
			instance.sinkMaxRetries = n
		}

		tracesAddress := os.Getenv("TRACES_ADDRESS")
		if len(tracesAddress) > 0 {
			instance.tracesAddress = tracesAddress
		}

		metricsAddress := os.Getenv("METRICS_ADDRESS")
		if len(metricsAddress) > 0 {
			instance.metricsAddress = metricsAddress
		}
	})
}

func Env() string {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.env
}

func Name() string {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.name
}

func Version() string {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.version
}

func Runner() string {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.runner
}

func RunnerHost() string {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.runnerHost
}

func StopTimeout() time.Duration {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.stopTimeout
}

func Sink() string {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.sink
}

func SinkMaxRetries() int {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.sinkMaxRetries
}

func TracesAddress() string {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.tracesAddress
}

func MetricsAddress() string {
	if instance == nil {
		panic("cfg is nil")
	}

	return instance.metricsAddress
}
