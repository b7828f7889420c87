// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides weight initialization and checkpoint adaptation helpers
// for vision-transformer backbones.
//
// # Initialization
//
//	cfg := nn.DefaultTruncNormalConfig()
//	cfg.Std = 0.02
//	nn.TruncNormal(backend, weight, cfg)
//
// # Resolution changes
//
//	// 224px checkpoint (14x14 patches + [CLS]) loaded into a 384px model.
//	posEmbed, err := nn.InterpolatePosEmbed(checkpointPosEmbed, 24, 1)
package nn
