// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

const (
	// projectKeyPrefix is the kv store key prefix for persisted
	// projects.
	projectKeyPrefix = "project-"
)

// projectKey returns the kv store key for a project.
func projectKey(projectID string) string {
	return projectKeyPrefix + projectID
}

// saveProject mirrors the project to the kv store. It is a noop when the
// engine was created without a store.
//
// The caller must hold the engine mutex.
func (e *Engine) saveProject(p *project) error {
	if e.kv == nil {
		return nil
	}

	b, err := json.Marshal(p)
	if err != nil {
		return errors.WithStack(err)
	}
	err = e.kv.Put(map[string][]byte{
		projectKey(p.ID): b,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// loadProjects loads all persisted projects into the engine.
//
// The caller must hold the engine mutex.
func (e *Engine) loadProjects() error {
	return e.kv.Iter(projectKeyPrefix, func(key string, value []byte) error {
		var p project
		err := json.Unmarshal(value, &p)
		if err != nil {
			return errors.WithStack(err)
		}
		if p.ID == "" {
			p.ID = strings.TrimPrefix(key, projectKeyPrefix)
		}
		e.projects[p.ID] = &p

		log.Debugf("Project %v loaded from store", p.ID)

		return nil
	})
}
