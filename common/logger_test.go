/*
 *
 * xk6-browser - a browser automation extension for k6
 * Copyright (C) 2021 Load Impact
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package common

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level logrus.Level, debugOverride bool, filter *regexp.Regexp) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return NewLogger(l, debugOverride, filter), &buf
}

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	l, buf := newBufferLogger(logrus.WarnLevel, false, nil)
	l.Debugf("browser:Start", "hidden %d", 1)
	l.Infof("browser:Start", "hidden %d", 2)
	assert.Empty(t, buf.String())

	l.Warnf("browser:Run", "shown %d", 3)
	assert.Contains(t, buf.String(), "shown 3")
	assert.Contains(t, buf.String(), "category=\"browser:Run\"")
	assert.Contains(t, buf.String(), "elapsed=\"0 ms\"")
	assert.False(t, l.DebugMode())
}

func TestLoggerDebugOverride(t *testing.T) {
	t.Parallel()

	l, buf := newBufferLogger(logrus.WarnLevel, true, nil)
	l.Debugf("osext:Acquire", "set %s", "PWDEBUG")
	l.Tracef("osext:Acquire", "still hidden")

	assert.Contains(t, buf.String(), "osext:Acquire [0 ms]: set PWDEBUG\n")
	assert.NotContains(t, buf.String(), "still hidden")
}

func TestLoggerCategoryFilter(t *testing.T) {
	t.Parallel()

	l, buf := newBufferLogger(logrus.DebugLevel, false, regexp.MustCompile(`^browser:`))
	l.Debugf("osext:Acquire", "dropped")
	l.Debugf("browser:Start", "kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
	assert.True(t, l.DebugMode())
}

func TestLoggerSetLevel(t *testing.T) {
	t.Parallel()

	l, buf := newBufferLogger(logrus.ErrorLevel, false, nil)
	require.NoError(t, l.SetLevel("info"))
	l.Infof("cmd", "now visible")
	assert.Contains(t, buf.String(), "now visible")

	assert.Error(t, l.SetLevel("loud"))
}

func TestNilLogger(t *testing.T) {
	t.Parallel()

	var l *Logger
	assert.NotPanics(t, func() { l.Errorf("any", "nothing happens") })
	assert.NotPanics(t, func() { NullLogger().Errorf("any", "nothing happens") })
}

func TestNewStderrLogger(t *testing.T) {
	t.Parallel()

	l, err := NewStderrLogger("debug", "^browser")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	_, err = NewStderrLogger("loud", "")
	assert.ErrorContains(t, err, "parsing log level")

	_, err = NewStderrLogger("info", "(")
	assert.ErrorContains(t, err, "compiling log category filter")
}
