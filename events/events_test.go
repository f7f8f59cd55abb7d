package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

func TestLog_PreservesEmissionOrder(t *testing.T) {
	log := NewLog()
	id := interfaces.ComputeDappID("awesome")
	owner, err := interfaces.NewIdentityFromHex("00000000000000000000000000000000000000a1")
	require.NoError(t, err)

	log.Emit(Registered(id, owner))
	log.Emit(MetaChanged(id, "url", []byte("https://example.org")))
	log.Emit(Unregistered(id))

	assert.Equal(t, []Event{
		Registered(id, owner),
		MetaChanged(id, "url", []byte("https://example.org")),
		Unregistered(id),
	}, log.Events())
	assert.Equal(t, 3, log.Len())
}

func TestLog_EventsReturnsCopy(t *testing.T) {
	log := NewLog()
	log.Emit(Unregistered(interfaces.ComputeDappID("a")))

	events := log.Events()
	events[0] = Event{}

	assert.Equal(t, KindUnregistered, log.Events()[0].Kind)
}

func TestLog_ConcurrentEmit(t *testing.T) {
	log := NewLog()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				log.Emit(Unregistered(interfaces.ComputeDappID("x")))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, log.Len())
}

func TestFanout(t *testing.T) {
	first := NewLog()
	second := NewLog()
	sink := Fanout(first, second)

	event := Unregistered(interfaces.ComputeDappID("a"))
	sink.Emit(event)

	assert.Equal(t, []Event{event}, first.Events())
	assert.Equal(t, []Event{event}, second.Events())
}

func TestNATSSink_SubjectNaming(t *testing.T) {
	sink := &NATSSink{prefix: DefaultSubjectPrefix}

	assert.Equal(t, "registry.events.registered", sink.subjectFor(KindRegistered))
	assert.Equal(t, "registry.events.administratorchanged", sink.subjectFor(KindAdministratorChanged))
}
