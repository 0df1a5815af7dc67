// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedxor.
//
// go-seedxor is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package seedxor

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-seedxor/pkg/metrics"
)

func TestMetrics_SplitAndRestoreOutcomes(t *testing.T) {
	selfCheck := metrics.SplitErrorsTotal.WithLabelValues("self_check")
	rejected := metrics.PartsRejectedTotal.WithLabelValues("unknown_word")
	permanent := metrics.CommitsTotal.WithLabelValues("permanent")
	completed := metrics.RestoresTotal.WithLabelValues(metrics.OutcomeCompleted)
	aborted := metrics.RestoresTotal.WithLabelValues(metrics.OutcomeAborted)

	beforeSelfCheck := testutil.ToFloat64(selfCheck)
	beforeRejected := testutil.ToFloat64(rejected)
	beforePermanent := testutil.ToFloat64(permanent)
	beforeCompleted := testutil.ToFloat64(completed)
	beforeAborted := testutil.ToFloat64(aborted)

	splitter := newTestSplitter(t, nil)
	splitter.combine = func(dst *Part, parts []Part) {
		combine(dst, parts)
		dst[31] ^= 0x80
	}
	_, err := splitter.Split(testSecret(t), 3, false)
	require.ErrorIs(t, err, ErrSelfCheck)

	words := splitWords(t, testSecret(t), 2)
	r := newTestReconstructor(t, newMemoryStore())
	bad := append(append([]string(nil), words[0][:23]...), "qqqq")
	require.ErrorIs(t, r.AddPart(bad), ErrInvalidPart)
	require.NoError(t, r.AddPart(words[0]))
	require.NoError(t, r.AddPart(words[1]))
	_, err = r.Commit()
	require.NoError(t, err)

	other := newTestReconstructor(t, newMemoryStore())
	other.Abort()
	other.Abort()

	assert.Equal(t, beforeSelfCheck+1, testutil.ToFloat64(selfCheck))
	assert.Equal(t, beforeRejected+1, testutil.ToFloat64(rejected))
	assert.Equal(t, beforePermanent+1, testutil.ToFloat64(permanent))
	assert.Equal(t, beforeCompleted+1, testutil.ToFloat64(completed))
	assert.Equal(t, beforeAborted+1, testutil.ToFloat64(aborted))
}
