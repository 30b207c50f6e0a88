// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package waitq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip stress tests over the lock-free structures,
// whose slot publication the detector cannot observe.
const RaceEnabled = true
