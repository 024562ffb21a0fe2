package actormesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionRegistryWildcardAndDirectKeys(t *testing.T) {
	reg := newSubscriptionRegistry()
	pub := "actor://local/actor/pub"
	subA := NewAddress("local", "actor", "a")
	subB := NewAddress("local", "actor", "b")

	unsubA := reg.subscribe(directKey(pub, "PING"), subA)
	reg.subscribe(directWildcardKey(pub), subB)

	direct := reg.subscribers(directKey(pub, "PING"))
	assert.ElementsMatch(t, []Address{subA}, direct)

	wildcard := reg.subscribers(directWildcardKey(pub))
	assert.ElementsMatch(t, []Address{subB}, wildcard)

	unsubA()
	assert.Empty(t, reg.subscribers(directKey(pub, "PING")))
}

func TestSubscriptionRegistryUnsubscribeByPath(t *testing.T) {
	reg := newSubscriptionRegistry()
	pub := "actor://local/actor/pub"
	sub := NewAddress("local", "actor", "s")

	key := emitKey(pub, "TICK")
	reg.subscribe(key, sub)
	assert.Len(t, reg.subscribers(key), 1)

	reg.unsubscribe(key, sub.Path)
	assert.Empty(t, reg.subscribers(key))
}

func TestEventFilterKeysFor(t *testing.T) {
	pub := "actor://local/actor/pub"

	empty := EventFilter{}
	assert.ElementsMatch(t, []string{directWildcardKey(pub), emitWildcardKey(pub)}, empty.keysFor(pub))

	narrowed := EventFilter{Events: []string{"TICK", "BOOM"}}
	assert.ElementsMatch(t, []string{
		directKey(pub, "TICK"), emitKey(pub, "TICK"),
		directKey(pub, "BOOM"), emitKey(pub, "BOOM"),
	}, narrowed.keysFor(pub))
}
