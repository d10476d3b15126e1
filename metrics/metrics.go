// Copyright 2026 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics counts what graph construction and expansion did.  All
// methods are safe to call on a nil *Registry, which records nothing.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Registry holds the graph metrics and the Prometheus registry they are
// registered with.
type Registry struct {
	registry *prometheus.Registry

	NodesCreated        *prometheus.CounterVec
	DynamicDependencies prometheus.Counter
	PreBuildHooks       *prometheus.CounterVec
	ExpandedSources     prometheus.Counter
	LabelCacheLookups   *prometheus.CounterVec
}

// NewRegistry creates a Registry backed by a fresh Prometheus registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		NodesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ccgraph_nodes_created_total",
				Help: "Number of graph nodes created, by node kind",
			},
			[]string{"kind"},
		),
		DynamicDependencies: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ccgraph_dynamic_dependencies_total",
				Help: "Number of dependency edges added during deferred expansion",
			},
		),
		PreBuildHooks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ccgraph_prebuild_hooks_total",
				Help: "Number of pre-build hooks run, by result",
			},
			[]string{"result"}, // ok, error
		),
		ExpandedSources: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ccgraph_expanded_sources_total",
				Help: "Number of generated source files turned into compile nodes",
			},
		),
		LabelCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ccgraph_label_cache_lookups_total",
				Help: "Effective label cache lookups, by result",
			},
			[]string{"result"}, // hit, miss
		),
	}
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// NodeCreated counts a node of the given kind.
func (r *Registry) NodeCreated(kind string) {
	if r == nil {
		return
	}
	r.NodesCreated.WithLabelValues(kind).Inc()
}

// DynamicDependencyAdded counts an edge added after dependencies were
// resolved.
func (r *Registry) DynamicDependencyAdded() {
	if r == nil {
		return
	}
	r.DynamicDependencies.Inc()
}

// PreBuildHookRan counts a pre-build hook run by its result.
func (r *Registry) PreBuildHookRan(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.PreBuildHooks.WithLabelValues(result).Inc()
}

// SourcesExpanded counts compile nodes created from generated sources.
func (r *Registry) SourcesExpanded(n int) {
	if r == nil {
		return
	}
	r.ExpandedSources.Add(float64(n))
}

// LabelCacheLookup counts an effective label lookup as a hit or a miss.
func (r *Registry) LabelCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.LabelCacheLookups.WithLabelValues(result).Inc()
}

// WriteText writes every metric in the Prometheus text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	if r == nil {
		return nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
