package mapping

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryConcurrentFirstUse(t *testing.T) {
	reg := NewRegistry()
	d := NewTable("orders").
		PartitionKey("id", UUID, 0).
		Column("shipping", Ref(addressType())).
		Build()

	const workers = 32
	results := make([]*EntityModel, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			m, err := reg.Compile(d)
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	close(start)
	wg.Wait()

	for _, m := range results {
		require.NotNil(t, m)
		assert.Same(t, results[0], m)
	}
	assert.Len(t, reg.Models(), 2)
}

func TestRegistryCompileAll(t *testing.T) {
	reg := NewRegistry()
	addr := addressType()
	users := NewTable("users").PartitionKey("id", UUID, 0).Column("home", Ref(addr)).Build()

	models, err := reg.CompileAll(users, addr)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "users", models[0].Name())
	assert.Equal(t, "address", models[1].Name())

	_, err = reg.CompileAll(users, NewTable("broken").Build())
	assert.Error(t, err)
}

func TestRegistryModelsSortedByName(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.CompileAll(
		NewTable("zeta").PartitionKey("id", Int32, 0).Build(),
		NewTable("alpha").PartitionKey("id", Int32, 0).Build(),
	)
	require.NoError(t, err)

	models := reg.Models()
	require.Len(t, models, 2)
	assert.Equal(t, "alpha", models[0].Name())
	assert.Equal(t, "zeta", models[1].Name())
}
