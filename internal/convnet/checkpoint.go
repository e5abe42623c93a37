package convnet

import (
	"fmt"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
	"github.com/xdxdVSxdxd/deep-dream/internal/weights"
)

// modelName tags checkpoint files so readers can tell what produced
// them.
const modelName = "googlenet-dream"

// Parameters returns the live parameter tensors keyed by
// "<layer>.weight" and "<layer>.bias". Pooling layers have none.
// Mutating a returned tensor mutates the network.
func (n *Network) Parameters() map[string]*tensor.Tensor {
	params := make(map[string]*tensor.Tensor)
	for _, l := range n.layers {
		conv, ok := l.op.(*convLayer)
		if !ok {
			continue
		}
		params[l.name+".weight"] = conv.kernel
		params[l.name+".bias"] = conv.bias
	}
	return params
}

// SaveWeights writes every parameter tensor to a checkpoint file at
// path. Two networks built from the same seed write identical files.
func (n *Network) SaveWeights(path string) error {
	meta := map[string]string{"model": modelName}
	if err := weights.WriteFile(path, n.Parameters(), meta); err != nil {
		return fmt.Errorf("convnet: save weights: %w", err)
	}
	return nil
}

// LoadWeights replaces every parameter with the tensors in the
// checkpoint at path. The checkpoint must hold exactly this network's
// parameter set with matching shapes.
func (n *Network) LoadWeights(path string) error {
	r, err := weights.Open(path)
	if err != nil {
		return fmt.Errorf("convnet: load weights: %w", err)
	}
	defer r.Close()

	params := n.Parameters()
	if got, want := len(r.TensorNames()), len(params); got != want {
		return fmt.Errorf("convnet: load weights: checkpoint holds %d tensors, network has %d parameters", got, want)
	}

	for name, dst := range params {
		src, err := r.Tensor(name)
		if err != nil {
			return fmt.Errorf("convnet: load weights: %w", err)
		}
		if !src.Shape().Equal(dst.Shape()) {
			return fmt.Errorf("convnet: load weights: %s has shape %v, network expects %v",
				name, src.Shape(), dst.Shape())
		}
		copy(dst.Data(), src.Data())
	}
	return nil
}
