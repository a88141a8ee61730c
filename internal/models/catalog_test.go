package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackageByID(t *testing.T) {
	pkg, ok := PackageByID("standard")
	assert.True(t, ok)
	assert.Equal(t, 25, pkg.ReviewCount)
	assert.InDelta(t, 199, pkg.Price, 0.001)

	_, ok = PackageByID("enterprise")
	assert.False(t, ok)
}

func TestPackageCommission(t *testing.T) {
	basic, _ := PackageByID("basic")
	standard, _ := PackageByID("standard")
	premium, _ := PackageByID("premium")

	assert.InDelta(t, 9.90, basic.Commission(), 0.001)
	assert.InDelta(t, 7.96, standard.Commission(), 0.001)
	assert.InDelta(t, 6.98, premium.Commission(), 0.001)
}
