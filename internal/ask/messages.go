// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package ask

// --- Tea messages ---

type questionsMsg struct {
	questions []Question
	err       error
}

type answerMsg struct {
	method   string
	question string
	answer   *Answer
	err      error
}
