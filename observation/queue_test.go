// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package observation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/observation"
)

func TestSendAndDrain(t *testing.T) {
	queue := observation.NewQueue()

	var to account.Account
	to[0] = 0x01

	queue.Send("credit", observation.CreditMinted{To: to, Amount: 100})
	queue.Send("credit", observation.CreditTransferred{From: to, To: to, Amount: 5})

	drained := queue.Drain()
	assert.Equal(t, 2, len(drained), "wrong observation count")
	assert.Equal(t, "credit", drained[0].From, "wrong source")

	minted, ok := drained[0].Item.(observation.CreditMinted)
	assert.True(t, ok, "wrong record type")
	assert.Equal(t, uint64(100), minted.Amount, "wrong amount")

	assert.Equal(t, 0, len(queue.Drain()), "queue not empty after drain")
}

func TestChan(t *testing.T) {
	queue := observation.NewQueue()
	queue.Send("test", observation.CreditMinted{Amount: 1})

	select {
	case o := <-queue.Chan():
		assert.Equal(t, "test", o.From, "wrong source")
	default:
		t.Fatal("no observation on channel")
	}
}
