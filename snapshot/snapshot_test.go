// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot_test

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/accessgrid/accessd/accessledger"
	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/authority"
	"github.com/accessgrid/accessd/classrecord"
	"github.com/accessgrid/accessd/creditledger"
	"github.com/accessgrid/accessd/fault"
	"github.com/accessgrid/accessd/feesettle"
	"github.com/accessgrid/accessd/observation"
	"github.com/accessgrid/accessd/registry"
	"github.com/accessgrid/accessd/snapshot"
	"github.com/accessgrid/accessd/storage"
	"github.com/bitmark-inc/logger"
)

var currentTime uint64 = 3000000

var testClock = registry.ClockFunc(func() uint64 {
	return currentTime
})

var (
	owner      = makeAccount(0x21)
	alice      = makeAccount(0x22)
	bob        = makeAccount(0x23)
	carol      = makeAccount(0x24)
	pool       = makeAccount(0x25)
	treasury   = makeAccount(0x26)
	settlement = makeAccount(0x27)
)

func makeAccount(fill byte) account.Account {
	var a account.Account
	for i := 0; i < account.AccountSize; i += 1 {
		a[i] = fill
	}
	return a
}

func TestMain(m *testing.M) {
	workDirectory, err := ioutil.TempDir("", "snapshot-test")
	if nil != err {
		panic(fmt.Sprintf("tempdir failed: %s", err))
	}
	defer os.RemoveAll(workDirectory)

	logConfiguration := logger.Configuration{
		Directory: workDirectory,
		File:      "snapshot.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logConfiguration); nil != err {
		panic(fmt.Sprintf("logger initialisation failed: %s", err))
	}

	if err := storage.Initialise(filepath.Join(workDirectory, "snapshot.leveldb")); nil != err {
		panic(fmt.Sprintf("storage initialisation failed: %s", err))
	}

	rc := m.Run()
	storage.Finalise()
	os.Exit(rc)
}

type fixture struct {
	auth     *authority.SingleOwner
	credit   *creditledger.Ledger
	access   *accessledger.Ledger
	registry *registry.Registry
}

func newFixture(t *testing.T) *fixture {
	auth, err := authority.NewSingleOwner(owner)
	if nil != err {
		t.Fatalf("authority error: %s", err)
	}
	bus := observation.NewQueue()

	credit, err := creditledger.New(auth, bus)
	if nil != err {
		t.Fatalf("credit ledger error: %s", err)
	}
	fees, err := feesettle.New(credit, settlement, treasury, bus)
	if nil != err {
		t.Fatalf("settlement error: %s", err)
	}
	reg, err := registry.New(storage.Pool.ClassRecords, testClock, auth)
	if nil != err {
		t.Fatalf("registry error: %s", err)
	}
	access, err := accessledger.New(auth, reg, fees, bus)
	if nil != err {
		t.Fatalf("access ledger error: %s", err)
	}
	return &fixture{
		auth:     auth,
		credit:   credit,
		access:   access,
		registry: reg,
	}
}

func makeAttributes(t *testing.T, model string) *classrecord.ClassAttributes {
	modelTag, err := classrecord.TagFromString(model)
	if nil != err {
		t.Fatalf("tag error: %s", err)
	}
	scopeTag, err := classrecord.TagFromString("global")
	if nil != err {
		t.Fatalf("tag error: %s", err)
	}
	return &classrecord.ClassAttributes{
		Model:      modelTag,
		Scope:      scopeTag,
		OriginPool: pool,
		Tradable:   true,
	}
}

func TestRoundTrip(t *testing.T) {
	saved := newFixture(t)

	assert.Nil(t, saved.credit.Mint(owner, alice, 900), "mint")
	assert.Nil(t, saved.credit.Mint(owner, bob, 100), "mint")
	assert.Nil(t, saved.credit.Approve(alice, settlement, 50), "approve")
	assert.Nil(t, saved.credit.Approve(bob, settlement, creditledger.Unlimited), "approve")
	assert.Nil(t, saved.auth.SetMinter(owner, carol, true), "set minter")

	classA, err := saved.access.MintToAddress(owner, alice, makeAttributes(t, "snap-a"), 70)
	assert.Nil(t, err, "mint failed")
	classB, err := saved.access.MintToAddress(owner, bob, makeAttributes(t, "snap-b"), 40)
	assert.Nil(t, err, "mint failed")
	assert.Nil(t, saved.access.Transfer(alice, carol, classA, 30, 0), "transfer")

	assert.Nil(t, snapshot.Save(saved.credit, saved.access, saved.registry, saved.auth), "save failed")
	assert.True(t, snapshot.Exists(), "snapshot missing after save")

	loaded := newFixture(t)
	assert.Nil(t, snapshot.Load(loaded.credit, loaded.access, loaded.registry, loaded.auth), "load failed")

	assert.Equal(t, uint64(900), loaded.credit.Balance(alice), "credit balance")
	assert.Equal(t, uint64(100), loaded.credit.Balance(bob), "credit balance")
	assert.Equal(t, uint64(1000), loaded.credit.TotalSupply(), "credit supply")
	assert.Equal(t, uint64(50), loaded.credit.Allowance(alice, settlement), "allowance")
	assert.Equal(t, uint64(creditledger.Unlimited), loaded.credit.Allowance(bob, settlement), "unlimited allowance")

	assert.Equal(t, uint64(40), loaded.access.Balance(alice, classA), "token balance")
	assert.Equal(t, uint64(30), loaded.access.Balance(carol, classA), "token balance")
	assert.Equal(t, uint64(40), loaded.access.Balance(bob, classB), "token balance")
	assert.Equal(t, uint64(70), loaded.access.Supply(classA), "class supply")
	assert.Equal(t, uint64(40), loaded.access.Supply(classB), "class supply")

	assert.False(t, loaded.credit.IsPaused(), "paused flag")
	minters := loaded.auth.Minters()
	assert.Equal(t, 1, len(minters), "minter count")
	assert.Equal(t, carol, minters[0], "minter identity")
}

func TestSaveOverwritesStaleEntries(t *testing.T) {
	first := newFixture(t)
	assert.Nil(t, first.credit.Mint(owner, alice, 10), "mint")
	assert.Nil(t, first.credit.Mint(owner, bob, 20), "mint")
	assert.Nil(t, snapshot.Save(first.credit, first.access, first.registry, first.auth), "save failed")

	// a later state without bob must not resurrect him on load
	second := newFixture(t)
	assert.Nil(t, second.credit.Mint(owner, alice, 30), "mint")
	assert.Nil(t, snapshot.Save(second.credit, second.access, second.registry, second.auth), "save failed")

	loaded := newFixture(t)
	assert.Nil(t, snapshot.Load(loaded.credit, loaded.access, loaded.registry, loaded.auth), "load failed")
	assert.Equal(t, uint64(30), loaded.credit.Balance(alice), "alice balance")
	assert.Equal(t, uint64(0), loaded.credit.Balance(bob), "stale balance survived")
	assert.Equal(t, uint64(30), loaded.credit.TotalSupply(), "credit supply")
}

func TestLoadPausedState(t *testing.T) {
	paused := newFixture(t)
	assert.Nil(t, paused.credit.Pause(owner), "pause failed")
	assert.Nil(t, snapshot.Save(paused.credit, paused.access, paused.registry, paused.auth), "save failed")

	loaded := newFixture(t)
	assert.Nil(t, snapshot.Load(loaded.credit, loaded.access, loaded.registry, loaded.auth), "load failed")
	assert.True(t, loaded.credit.IsPaused(), "paused flag lost")
}

func TestBaseURISurvivesRoundTrip(t *testing.T) {
	saved := newFixture(t)
	classId, err := saved.access.MintToAddress(owner, alice, makeAttributes(t, "snap-uri"), 5)
	assert.Nil(t, err, "mint failed")
	assert.Nil(t, saved.registry.SetBaseURI(owner, "https://meta.example/"), "set base uri failed")
	assert.Nil(t, snapshot.Save(saved.credit, saved.access, saved.registry, saved.auth), "save failed")

	loaded := newFixture(t)
	assert.Nil(t, snapshot.Load(loaded.credit, loaded.access, loaded.registry, loaded.auth), "load failed")

	assert.Equal(t, "https://meta.example/", loaded.registry.BaseURI(), "base uri lost")
	assert.Equal(t, saved.registry.URI(classId), loaded.registry.URI(classId), "metadata location changed")
}

func TestLoadDetectsSupplyMismatch(t *testing.T) {
	saved := newFixture(t)
	classId, err := saved.access.MintToAddress(owner, alice, makeAttributes(t, "snap-bad"), 70)
	assert.Nil(t, err, "mint failed")
	assert.Nil(t, snapshot.Save(saved.credit, saved.access, saved.registry, saved.auth), "save failed")

	// tamper with the stored supply
	storage.Pool.ClassSupplies.PutN(classId[:], 71)

	loaded := newFixture(t)
	err = snapshot.Load(loaded.credit, loaded.access, loaded.registry, loaded.auth)
	assert.Equal(t, fault.SnapshotCorrupt, err, "tampered supply accepted")
}

func TestLoadDetectsBadVersion(t *testing.T) {
	saved := newFixture(t)
	assert.Nil(t, snapshot.Save(saved.credit, saved.access, saved.registry, saved.auth), "save failed")

	storage.Pool.Control.PutN([]byte("version"), 999)

	loaded := newFixture(t)
	err := snapshot.Load(loaded.credit, loaded.access, loaded.registry, loaded.auth)
	assert.Equal(t, fault.SnapshotCorrupt, err, "bad version accepted")

	// repair for any later test using the control pool
	storage.Pool.Control.PutN([]byte("version"), 1)
}
