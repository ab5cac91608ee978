// Package gpublur implements the wgpu compute-shader blur backend,
// falling back to unavailability (not an error) when no GPU adapter
// can be found.
package gpublur

import (
	_ "embed"

	"github.com/rajveermalviya/go-webgpu/wgpu"
)

//go:embed shaders/gaussian_blur.wgsl
var gaussianBlurShader string

// context holds the wgpu device, queue, shader module, and pipeline so
// they can be reused across frames without re-initialization.
type context struct {
	device          *wgpu.Device
	queue           *wgpu.Queue
	shader          *wgpu.ShaderModule
	pipeline        *wgpu.ComputePipeline
	bindGroupLayout *wgpu.BindGroupLayout
}

// gpuBlurParams mirrors the 48-byte WGSL uniform layout (12 x u32/f32).
type gpuBlurParams struct {
	Width        uint32
	Height       uint32
	KernelRadius uint32
	Sigma        float32
	EllipseCX    float32
	EllipseCY    float32
	EllipseA     float32
	EllipseB     float32
	UseEllipse   uint32
	Direction    uint32
	pad0         uint32
	pad1         uint32
}

// newContext creates a GPU context, returning ok=false if no suitable
// adapter is available. It never returns an error for "no GPU" — that
// is an expected, probeable outcome, not a failure.
func newContext() (*context, bool) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		return nil, false
	}
	defer adapter.Release()

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "blur-device",
	})
	if err != nil || device == nil {
		return nil, false
	}

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "gaussian-blur-shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: gaussianBlurShader},
	})
	if err != nil {
		device.Release()
		return nil, false
	}

	bindGroupLayout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "blur-bind-group-layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStage_Compute,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_Uniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStage_Compute,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_ReadOnlyStorage},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStage_Compute,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_Storage},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStage_Compute,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingType_ReadOnlyStorage},
			},
		},
	})
	if err != nil {
		shader.Release()
		device.Release()
		return nil, false
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "blur-pipeline-layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	if err != nil {
		bindGroupLayout.Release()
		shader.Release()
		device.Release()
		return nil, false
	}
	defer pipelineLayout.Release()

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "blur-pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "main",
		},
	})
	if err != nil {
		bindGroupLayout.Release()
		shader.Release()
		device.Release()
		return nil, false
	}

	return &context{
		device:          device,
		queue:           device.GetQueue(),
		shader:          shader,
		pipeline:        pipeline,
		bindGroupLayout: bindGroupLayout,
	}, true
}

func (c *context) release() {
	c.pipeline.Release()
	c.bindGroupLayout.Release()
	c.shader.Release()
	c.queue.Release()
	c.device.Release()
}

// blurROI runs the two-pass separable Gaussian blur (horizontal then
// vertical+ellipse-mask) on packed RGBA8 pixel data.
func (c *context) blurROI(pixels []uint32, width, height, kernelSize uint32, ellipseCX, ellipseCY, ellipseA, ellipseB float32, useEllipse bool) []uint32 {
	pixelCount := int(width * height)
	bufSize := uint64(pixelCount * 4)
	kernelRadius := kernelSize / 2
	sigma := float32(kernelSize) / 6.0

	inputBuf, _ := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "input",
		Size:  bufSize,
		Usage: wgpu.BufferUsage_Storage | wgpu.BufferUsage_CopyDst,
	})
	defer inputBuf.Release()
	outputBuf, _ := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "output",
		Size:  bufSize,
		Usage: wgpu.BufferUsage_Storage | wgpu.BufferUsage_CopySrc,
	})
	defer outputBuf.Release()
	originalBuf, _ := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "original",
		Size:  bufSize,
		Usage: wgpu.BufferUsage_Storage | wgpu.BufferUsage_CopyDst,
	})
	defer originalBuf.Release()
	stagingBuf, _ := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "staging",
		Size:  bufSize,
		Usage: wgpu.BufferUsage_MapRead | wgpu.BufferUsage_CopyDst,
	})
	defer stagingBuf.Release()

	c.queue.WriteBuffer(inputBuf, 0, wgpu.ToBytes(pixels))
	c.queue.WriteBuffer(originalBuf, 0, wgpu.ToBytes(pixels))

	workgroupsX := (width + 15) / 16
	workgroupsY := (height + 15) / 16

	runPass := func(direction uint32) {
		params := gpuBlurParams{
			Width: width, Height: height, KernelRadius: kernelRadius, Sigma: sigma,
			EllipseCX: ellipseCX, EllipseCY: ellipseCY, EllipseA: ellipseA, EllipseB: ellipseB,
			UseEllipse: boolToU32(useEllipse), Direction: direction,
		}
		paramsBuf, _ := c.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "params",
			Size:  48,
			Usage: wgpu.BufferUsage_Uniform | wgpu.BufferUsage_CopyDst,
		})
		defer paramsBuf.Release()
		c.queue.WriteBuffer(paramsBuf, 0, wgpu.ToBytes([]gpuBlurParams{params}))

		bindGroup, _ := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "bg",
			Layout: c.bindGroupLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: paramsBuf, Size: 48},
				{Binding: 1, Buffer: inputBuf, Size: bufSize},
				{Binding: 2, Buffer: outputBuf, Size: bufSize},
				{Binding: 3, Buffer: originalBuf, Size: bufSize},
			},
		})
		defer bindGroup.Release()

		encoder, _ := c.device.CreateCommandEncoder(nil)
		pass := encoder.BeginComputePass(nil)
		pass.SetPipeline(c.pipeline)
		pass.SetBindGroup(0, bindGroup, nil)
		pass.DispatchWorkgroups(workgroupsX, workgroupsY, 1)
		pass.End()

		cmd, _ := encoder.Finish(nil)
		c.queue.Submit(cmd)
	}

	runPass(0) // horizontal: input -> output

	copyEncoder, _ := c.device.CreateCommandEncoder(nil)
	copyEncoder.CopyBufferToBuffer(outputBuf, 0, inputBuf, 0, bufSize)
	copyCmd, _ := copyEncoder.Finish(nil)
	c.queue.Submit(copyCmd)

	runPass(1) // vertical + ellipse mask: input -> output

	finalEncoder, _ := c.device.CreateCommandEncoder(nil)
	finalEncoder.CopyBufferToBuffer(outputBuf, 0, stagingBuf, 0, bufSize)
	finalCmd, _ := finalEncoder.Finish(nil)
	c.queue.Submit(finalCmd)

	c.device.Poll(true, nil)

	data := stagingBuf.GetMappedRange(0, uint(bufSize))
	result := wgpu.FromBytes[uint32](data)
	out := make([]uint32, len(result))
	copy(out, result)
	stagingBuf.Unmap()
	return out
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
