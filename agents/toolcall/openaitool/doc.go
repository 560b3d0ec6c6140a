/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaitool converts between toolcall types and the OpenAI
// Assistants wire types.
package openaitool
