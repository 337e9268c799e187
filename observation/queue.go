// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package observation

import (
	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/classrecord"
)

// internal constants
const (
	queueSize = 1000
)

// CreditMinted - native credit created
type CreditMinted struct {
	To     account.Account
	Amount uint64
}

// CreditBurnedFrom - native credit destroyed under allowance
type CreditBurnedFrom struct {
	From   account.Account
	Amount uint64
}

// CreditTransferred - supply-neutral native credit move
type CreditTransferred struct {
	From   account.Account
	To     account.Account
	Amount uint64
}

// TokenMinted - access tokens issued under a class
//
// carries the full attribute tuple so observers can reconstruct class
// semantics without a separate registry lookup
type TokenMinted struct {
	To         account.Account
	ClassId    classrecord.ClassId
	Amount     uint64
	Attributes classrecord.ClassAttributes
}

// TokenTransferred - access tokens moved between accounts
type TokenTransferred struct {
	From    account.Account
	To      account.Account
	ClassId classrecord.ClassId
	Amount  uint64
}

// FeeApplied - native credit fee settled to the treasury
//
// a single transfer leaves PayerB zero; a trade carries both payers
type FeeApplied struct {
	PayerA   account.Account
	PayerB   account.Account
	FeeA     uint64
	FeeB     uint64
	Treasury account.Account
}

// Observation - one queued audit record
type Observation struct {
	From string
	Item interface{}
}

// Queue - a buffered observation channel
type Queue struct {
	c chan Observation
}

// NewQueue - create an observation queue
func NewQueue() *Queue {
	return &Queue{
		c: make(chan Observation, queueSize),
	}
}

// Send - queue one observation
func (queue *Queue) Send(from string, item interface{}) {
	queue.c <- Observation{
		From: from,
		Item: item,
	}
}

// Chan - channel to read from
func (queue *Queue) Chan() <-chan Observation {
	return queue.c
}

// Drain - remove and return all currently queued observations
func (queue *Queue) Drain() []Observation {
	drained := make([]Observation, 0, len(queue.c))
loop:
	for {
		select {
		case observation := <-queue.c:
			drained = append(drained, observation)
		default:
			break loop
		}
	}
	return drained
}
