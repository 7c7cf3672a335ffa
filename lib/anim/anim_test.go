package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransitionSettles(t *testing.T) {
	a := NewAnimator()
	tr := a.Start("camera", 5*time.Millisecond)
	select {
	case <-tr.Done():
	case <-time.After(time.Second):
		t.Fatal("transition never settled")
	}
	assert.False(t, tr.Interrupted())
}

func TestInterruptResolvesNotRejects(t *testing.T) {
	a := NewAnimator()
	first := a.Start("camera", time.Minute)
	second := a.Start("camera", time.Millisecond)

	// the superseded transition resolves immediately
	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("interrupted transition did not resolve")
	}
	assert.True(t, first.Interrupted())

	<-second.Done()
	assert.False(t, second.Interrupted())
}

func TestIndependentTargets(t *testing.T) {
	a := NewAnimator()
	first := a.Start("node-a", time.Minute)
	a.Start("node-b", time.Millisecond)

	select {
	case <-first.Done():
		t.Fatal("transition on a different target was interrupted")
	case <-time.After(10 * time.Millisecond):
	}
	a.StopAll()
	<-first.Done()
}

func TestSettled(t *testing.T) {
	tr := Settled()
	select {
	case <-tr.Done():
	default:
		t.Fatal("Settled transition must already be resolved")
	}
}
