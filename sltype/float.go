// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sltype

import "goki.dev/mat32/v2"

// Float is identical to a float32
type Float = float32

// Float2 is a length 2 vector of float32
type Float2 = mat32.Vec2

// Float3 is a length 3 vector of float32
type Float3 = mat32.Vec3

// Float4 is a length 4 vector of float32
type Float4 = mat32.Vec4
