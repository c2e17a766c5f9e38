// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package harness

import "go.uber.org/zap"

var log = zap.S()

// UpdateLogger is used to refresh the logger after it's been configured
// by the application.
func UpdateLogger() {
	log = zap.S()
}
