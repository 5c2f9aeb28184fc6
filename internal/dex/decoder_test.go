package dex

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

func TestV2PairDecoderSync(t *testing.T) {
	pairABI, err := V2PairABI()
	require.NoError(t, err)
	decoder, err := NewV2PairDecoder()
	require.NoError(t, err)

	data, err := pairABI.Events["Sync"].Inputs.NonIndexed().Pack(big.NewInt(123456), big.NewInt(789))
	require.NoError(t, err)

	pair := common.HexToAddress("0xC09bf2B1Bc8725903C509e8CAeef9190857215A8")
	event, err := decoder.Decode(buildLog(pair, pairABI.Events["Sync"].ID, data, nil))
	require.NoError(t, err)

	sync, ok := event.Decoded.(model.SyncEventData)
	require.True(t, ok, "decoded type mismatch")
	assert.Equal(t, "123456", sync.Reserve0)
	assert.Equal(t, "789", sync.Reserve1)
	assert.Equal(t, "Sync", event.EventName)
	assert.Equal(t, uint64(12345), event.BlockNumber)
	assert.Equal(t, pair.Hex(), event.Address)
}

func TestV2PairDecoderBurnSwap(t *testing.T) {
	pairABI, err := V2PairABI()
	require.NoError(t, err)
	decoder, err := NewV2PairDecoder()
	require.NoError(t, err)

	pair := common.HexToAddress("0x1111111111111111111111111111111111111111")
	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	to := common.HexToAddress("0x3333333333333333333333333333333333333333")

	burnData, err := pairABI.Events["Burn"].Inputs.NonIndexed().Pack(big.NewInt(500), big.NewInt(700))
	require.NoError(t, err)
	burnEvent, err := decoder.Decode(buildLog(pair, pairABI.Events["Burn"].ID, burnData, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(to),
	}))
	require.NoError(t, err)
	burn, ok := burnEvent.Decoded.(model.BurnEventData)
	require.True(t, ok)
	assert.Equal(t, model.BurnEventData{Sender: sender.Hex(), To: to.Hex(), Amount0: "500", Amount1: "700"}, burn)

	swapData, err := pairABI.Events["Swap"].Inputs.NonIndexed().Pack(big.NewInt(1), big.NewInt(0), big.NewInt(0), big.NewInt(4))
	require.NoError(t, err)
	swapEvent, err := decoder.Decode(buildLog(pair, pairABI.Events["Swap"].ID, swapData, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(to),
	}))
	require.NoError(t, err)
	swap, ok := swapEvent.Decoded.(model.SwapEventData)
	require.True(t, ok)
	assert.Equal(t, "1", swap.Amount0In)
	assert.Equal(t, "4", swap.Amount1Out)
	assert.Equal(t, to.Hex(), swap.To)
}

func TestV2PairDecoderRejectsWrongTopicCount(t *testing.T) {
	pairABI, err := V2PairABI()
	require.NoError(t, err)
	decoder, err := NewV2PairDecoder()
	require.NoError(t, err)

	data, err := pairABI.Events["Burn"].Inputs.NonIndexed().Pack(big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)
	_, err = decoder.Decode(buildLog(common.Address{}, pairABI.Events["Burn"].ID, data, nil))
	assert.Error(t, err)

	_, err = decoder.Decode(buildLog(common.Address{}, common.HexToHash("0xdead"), nil, nil))
	assert.Error(t, err)
}

func TestV4PoolManagerDecoderModifyLiquidity(t *testing.T) {
	managerABI, err := V4PoolManagerABI()
	require.NoError(t, err)
	decoder, err := NewV4PoolManagerDecoder()
	require.NoError(t, err)

	poolID := common.HexToHash("0xabcdef")
	sender := common.HexToAddress("0x4444444444444444444444444444444444444444")
	var salt [32]byte
	salt[31] = 7

	data, err := managerABI.Events["ModifyLiquidity"].Inputs.NonIndexed().Pack(
		big.NewInt(-887220),
		big.NewInt(887220),
		big.NewInt(-5000),
		salt,
	)
	require.NoError(t, err)

	event, err := decoder.Decode(buildLog(common.Address{}, managerABI.Events["ModifyLiquidity"].ID, data, []common.Hash{
		poolID,
		topicFromAddress(sender),
	}))
	require.NoError(t, err)

	modify, ok := event.Decoded.(model.ModifyLiquidityEventData)
	require.True(t, ok)
	assert.Equal(t, poolID.Hex(), modify.PoolID)
	assert.Equal(t, int32(-887220), modify.TickLower)
	assert.Equal(t, int32(887220), modify.TickUpper)
	assert.Equal(t, "-5000", modify.LiquidityDelta)
	assert.Equal(t, sender.Hex(), modify.Sender)
}

func TestDecoderTopics(t *testing.T) {
	decoder, err := NewV2PairDecoder()
	require.NoError(t, err)

	topics := decoder.Topics("Sync", "Burn", "Unknown")
	require.Len(t, topics, 2)
	assert.True(t, decoder.CanDecode(topics[0]))
	assert.Equal(t, common.HexToHash("0x1c411e9a96e071241c2f21f7726b17ae89e3cab4c78be50e062b03a9fffbbad1"), decoder.Topic("Sync"))
}

func buildLog(address common.Address, topic0 common.Hash, data []byte, indexed []common.Hash) types.Log {
	topics := make([]common.Hash, 0, len(indexed)+1)
	topics = append(topics, topic0)
	topics = append(topics, indexed...)
	return types.Log{
		Address:     address,
		Topics:      topics,
		Data:        data,
		BlockNumber: 12345,
		TxHash:      common.HexToHash("0xdef"),
		Index:       1,
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
