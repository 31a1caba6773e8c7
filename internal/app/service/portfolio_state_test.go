package service

import (
	"sync"
	"testing"

	"soroban_portfolio/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioState_PublishAndRead(t *testing.T) {
	st := NewPortfolioState()
	assert.Nil(t, st.Current())
	assert.Nil(t, st.Tokens())

	snap := &entity.PortfolioSnapshot{
		Address: "GABC",
		Tokens:  []entity.PortfolioToken{{TokenID: "USDC"}, {TokenID: "XLM"}},
	}
	st.Publish(snap)
	assert.Same(t, snap, st.Current())

	tokens := st.Tokens()
	require.Len(t, tokens, 2)
	tokens[0].TokenID = "CHANGED"
	assert.Equal(t, "USDC", st.Current().Tokens[0].TokenID, "Tokens returns a copy")
}

func TestPortfolioState_ConcurrentReaders(t *testing.T) {
	st := NewPortfolioState()
	a := &entity.PortfolioSnapshot{Address: "A", Tokens: make([]entity.PortfolioToken, 3)}
	b := &entity.PortfolioSnapshot{Address: "B", Tokens: make([]entity.PortfolioToken, 5)}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				st.Publish(a)
			} else {
				st.Publish(b)
			}
		}(i)
		go func() {
			defer wg.Done()
			cur := st.Current()
			if cur == nil {
				return
			}
			switch cur.Address {
			case "A":
				assert.Len(t, cur.Tokens, 3)
			case "B":
				assert.Len(t, cur.Tokens, 5)
			}
		}()
	}
	wg.Wait()
}
