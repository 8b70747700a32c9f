package dnn

import (
	"context"
	"fmt"
	"os"
	"time"

	"gocv.io/x/gocv"
)

// netPool gocv.Net 不能并发调用，每个并发槽位持有一份网络
type netPool struct {
	nets         chan gocv.Net
	queueTimeout time.Duration
}

func newNetPool(modelPath, configPath string, size int, queueTimeout time.Duration) (*netPool, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
	}
	if size < 1 {
		size = 1
	}

	p := &netPool{
		nets:         make(chan gocv.Net, size),
		queueTimeout: queueTimeout,
	}

	for i := 0; i < size; i++ {
		net := gocv.ReadNet(modelPath, configPath)
		if net.Empty() {
			p.Close()
			return nil, fmt.Errorf("failed to load network: %s", modelPath)
		}

		errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
		errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
		if errBackend != nil || errTarget != nil {
			net.Close()
			p.Close()
			return nil, fmt.Errorf("failed to set preferable backend or target")
		}

		p.nets <- net
	}

	return p, nil
}

// acquire 排队等待空闲网络，超过 queueTimeout 返回错误
func (p *netPool) acquire(ctx context.Context) (gocv.Net, error) {
	if p.queueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.queueTimeout)
		defer cancel()
	}

	select {
	case net := <-p.nets:
		return net, nil
	case <-ctx.Done():
		return gocv.Net{}, fmt.Errorf("inference queue is full: %w", ctx.Err())
	}
}

func (p *netPool) release(net gocv.Net) {
	p.nets <- net
}

// Close 释放当前空闲的网络；调用前应停止接收请求
func (p *netPool) Close() error {
	for {
		select {
		case net := <-p.nets:
			net.Close()
		default:
			return nil
		}
	}
}
