// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package learning

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMAB(t *testing.T) {
	t.Run("exp3", func(t *testing.T) {
		testMAB(t, &EXP3[int]{
			ExplorationRate: 0.1,
		})
	})
	t.Run("expected", func(t *testing.T) {
		testMAB(t, &ExpectedMAB[int]{
			LearningRate:    0.05,
			ExplorationRate: 0.05,
		})
	})
}

func testMAB(t *testing.T, bandit MAB[int]) {
	r := rand.New(rand.NewSource(1))

	// Expected rewards.
	// We don't want to emulate normal distribution, but we want
	// their averages to be different.
	arms := []float64{0.2, 0.7, 0.5, 0.1}
	for i := range arms {
		bandit.AddArm(i)
	}

	const steps = 15000
	counts := runMAB(r, bandit, arms, steps)
	t.Logf("initially: %v", counts)

	// Ensure that we've found the best arm.
	assert.Greater(t, counts[1], steps/2)

	// Now add one more arm.
	arms = append(arms, 0.9)
	bandit.AddArm(len(arms) - 1)

	// And re-run the experiment.
	counts = runMAB(r, bandit, arms, steps)
	t.Logf("after one new arm: %v", counts)
	assert.Greater(t, counts[len(counts)-1], steps/2)

	// Now remove some arms and add another one.
	arms = append(arms, 0.6)
	bandit.Rebuild([]int{0, 2, 5})

	counts = runMAB(r, bandit, arms, steps)
	t.Logf("after rebuild: %v", counts)
	assert.Greater(t, counts[len(counts)-1], steps/2)
}

func TestManyArms(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	bandit := &ExpectedMAB[int]{
		LearningRate:    0.05,
		ExplorationRate: 0.05,
	}
	arms := make([]float64, 1000)
	for i := 0; i < len(arms); i += 25 {
		arms[i] = 1.0
	}
	for i := range arms {
		bandit.AddArm(i)
	}
	const steps = 25000
	counts := runMAB(r, bandit, arms, steps)
	sum := 0
	for i := 0; i < len(arms); i += 25 {
		sum += counts[i]
	}
	assert.Greater(t, sum, steps/2)
}

func TestSmallDiff(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	bandit := &PlainMAB[int]{
		LearningRate:    0.02,
		ExplorationRate: 0.02,
	}
	arms := []float64{0.6, 0.7}
	for i := range arms {
		bandit.AddArm(i)
	}
	const steps = 20000
	counts := runMAB(r, bandit, arms, steps)
	t.Logf("%+v", counts)
}

func TestNonStationaryMAB(t *testing.T) {
	t.Run("exp3", func(t *testing.T) {
		testNonStationaryMAB(t, &EXP3[int]{
			ExplorationRate: 0.1,
		})
	})
	t.Run("expected", func(t *testing.T) {
		testNonStationaryMAB(t, &ExpectedMAB[int]{
			LearningRate:    0.025,
			ExplorationRate: 0.05,
		})
	})
}

func testNonStationaryMAB(t *testing.T, bandit MAB[int]) {
	r := rand.New(rand.NewSource(1))

	arms := []float64{0.2, 0.7, 0.5, 0.1}
	for i := range arms {
		bandit.AddArm(i)
	}

	const steps = 20000
	counts := runMAB(r, bandit, arms, steps)
	t.Logf("initially: %v", counts)

	// Ensure that we've found the best arm.
	assert.Greater(t, counts[1], steps/2)

	// Now change the best arm's avg reward.
	arms[3] = 0.9
	counts = runMAB(r, bandit, arms, steps)
	t.Logf("after reward change: %v", counts)
	assert.Greater(t, counts[3], steps/2)
}

func runMAB(r *rand.Rand, bandit MAB[int], arms []float64, steps int) []int {
	counts := make([]int, len(arms))
	for i := 0; i < steps; i++ {
		action := bandit.Action(r)
		reward := r.Float64() * arms[action.Arm]
		counts[action.Arm]++
		bandit.SaveReward(action, reward)
	}
	return counts
}
