// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vici

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/go-vici/vici/common"
)

var (
	metricConnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: common.App,
		Subsystem: "vici",
		Name:      "connects_total",
		Help:      "Number of successful daemon connections established.",
	})

	metricCallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: common.App,
		Subsystem: "vici",
		Name:      "calls_total",
		Help:      "Number of Call invocations issued to the daemon.",
	})

	metricCallErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.App,
		Subsystem: "vici",
		Name:      "call_errors_total",
		Help:      "Number of Call invocations that ended in an error, by kind.",
	}, []string{"kind"})

	metricEventsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: common.App,
		Subsystem: "vici",
		Name:      "events_received_total",
		Help:      "Number of EVENT packets delivered to callers via ReadEvent.",
	})

	metricEventsBufferedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: common.App,
		Subsystem: "vici",
		Name:      "events_buffered_total",
		Help:      "Number of EVENT packets buffered while a call/register/unregister was in flight.",
	})

	metricSubscriptionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: common.App,
		Subsystem: "vici",
		Name:      "subscriptions_active",
		Help:      "Number of event names currently subscribed on the connection.",
	})
)
