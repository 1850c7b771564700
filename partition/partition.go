// Package partition splits a dataset into disjoint groups that share a
// partition key.
package partition

import (
	"github.com/exascience/strataboot"
)

// Partition splits data into groups by the given key fields, which must be
// either strataboot.Year, or strataboot.Year and strataboot.Survey.
//
// Groups are returned in first-appearance order of their keys, and the
// observations of each group keep their relative order from data. Every
// observation belongs to exactly one group.
//
// When Survey is not a key field, the Survey of a group's key is set to the
// survey shared by all of its observations, or left empty if the group
// mixes surveys.
//
// Partition returns an error wrapping strataboot.ErrEmptyDataset if data
// has no rows, and strataboot.ErrInvalidConfiguration for unusable key
// fields.
func Partition(data strataboot.Dataset, fields ...strataboot.KeyField) ([]strataboot.Group, error) {
	if err := strataboot.ValidateKeyFields(fields); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, strataboot.ErrEmptyDataset
	}
	bySurvey := false
	for _, f := range fields {
		if f == strataboot.Survey {
			bySurvey = true
		}
	}

	index := make(map[strataboot.Key]int)
	var groups []strataboot.Group
	mixed := make(map[int]bool)
	for _, obs := range data {
		key := strataboot.Key{Year: obs.Year}
		if bySurvey {
			key.Survey = obs.Survey
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, strataboot.Group{Key: key})
		}
		g := &groups[i]
		g.Observations = append(g.Observations, obs)
		if !bySurvey && obs.Survey != g.Observations[0].Survey {
			mixed[i] = true
		}
	}

	if !bySurvey {
		for i := range groups {
			if !mixed[i] {
				groups[i].Key.Survey = groups[i].Observations[0].Survey
			}
		}
	}
	return groups, nil
}
