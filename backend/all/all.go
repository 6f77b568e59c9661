// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package all registers every backend shipped with tenalg.
//
// To use it simply include:
//
//	import _ "github.com/born-ml/tenalg/backend/all"
package all

import (
	_ "github.com/born-ml/tenalg/backend/cpu"
	_ "github.com/born-ml/tenalg/backend/gonum"
)
