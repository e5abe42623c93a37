package webgpu

// WGSL compute shaders for tensor operations.
// Using string constants instead of embed for simplicity.

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

// conv2dShader computes the 2D cross-correlation forward pass.
// Input is [C_in, H, W], kernel is [C_out, C_in, KH, KW], one thread
// per output element.
const conv2dShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read> kernel: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    c_in: u32,
    h_in: u32,
    w_in: u32,
    c_out: u32,
    h_out: u32,
    w_out: u32,
    kernel_h: u32,
    kernel_w: u32,
    stride: u32,
    padding: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    let total = params.c_out * params.h_out * params.w_out;
    if (idx >= total) {
        return;
    }

    let plane = params.h_out * params.w_out;
    let co = idx / plane;
    let rem = idx % plane;
    let oy = rem / params.w_out;
    let ox = rem % params.w_out;

    var sum: f32 = 0.0;
    for (var ci: u32 = 0u; ci < params.c_in; ci = ci + 1u) {
        for (var kh: u32 = 0u; kh < params.kernel_h; kh = kh + 1u) {
            let iy = i32(oy * params.stride + kh) - i32(params.padding);
            if (iy < 0 || iy >= i32(params.h_in)) {
                continue;
            }
            for (var kw: u32 = 0u; kw < params.kernel_w; kw = kw + 1u) {
                let ix = i32(ox * params.stride + kw) - i32(params.padding);
                if (ix < 0 || ix >= i32(params.w_in)) {
                    continue;
                }
                let in_idx = (ci * params.h_in + u32(iy)) * params.w_in + u32(ix);
                let k_idx = ((co * params.c_in + ci) * params.kernel_h + kh) * params.kernel_w + kw;
                sum = sum + input[in_idx] * kernel[k_idx];
            }
        }
    }

    result[idx] = sum;
}
`

// conv2dInputBackwardShader computes the convolution gradient with
// respect to the input (transposed convolution of the output gradient
// with the same kernel). One thread per input element, so no two
// threads write the same location and no atomics are needed.
const conv2dInputBackwardShader = `
@group(0) @binding(0) var<storage, read> grad: array<f32>;
@group(0) @binding(1) var<storage, read> kernel: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    c_in: u32,
    h_in: u32,
    w_in: u32,
    c_out: u32,
    h_out: u32,
    w_out: u32,
    kernel_h: u32,
    kernel_w: u32,
    stride: u32,
    padding: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    let total = params.c_in * params.h_in * params.w_in;
    if (idx >= total) {
        return;
    }

    let plane = params.h_in * params.w_in;
    let ci = idx / plane;
    let rem = idx % plane;
    let iy = rem / params.w_in;
    let ix = rem % params.w_in;

    var sum: f32 = 0.0;
    for (var co: u32 = 0u; co < params.c_out; co = co + 1u) {
        for (var kh: u32 = 0u; kh < params.kernel_h; kh = kh + 1u) {
            let ty = i32(iy + params.padding) - i32(kh);
            if (ty < 0 || ty % i32(params.stride) != 0) {
                continue;
            }
            let oy = u32(ty) / params.stride;
            if (oy >= params.h_out) {
                continue;
            }
            for (var kw: u32 = 0u; kw < params.kernel_w; kw = kw + 1u) {
                let tx = i32(ix + params.padding) - i32(kw);
                if (tx < 0 || tx % i32(params.stride) != 0) {
                    continue;
                }
                let ox = u32(tx) / params.stride;
                if (ox >= params.w_out) {
                    continue;
                }
                let g_idx = (co * params.h_out + oy) * params.w_out + ox;
                let k_idx = ((co * params.c_in + ci) * params.kernel_h + kh) * params.kernel_w + kw;
                sum = sum + grad[g_idx] * kernel[k_idx];
            }
        }
    }

    result[idx] = sum;
}
`

// maxpool2dShader computes max pooling and records the flat input index
// of each window maximum for gradient routing. Windows never cross the
// input edge (output dims are (in - kernel) / stride + 1), so no bounds
// checks are needed inside the window scan.
const maxpool2dShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;
@group(0) @binding(2) var<storage, read_write> indices: array<u32>;

struct Params {
    channels: u32,
    h_in: u32,
    w_in: u32,
    h_out: u32,
    w_out: u32,
    kernel_size: u32,
    stride: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    let total = params.channels * params.h_out * params.w_out;
    if (idx >= total) {
        return;
    }

    let plane = params.h_out * params.w_out;
    let c = idx / plane;
    let rem = idx % plane;
    let oy = rem / params.w_out;
    let ox = rem % params.w_out;

    let h_start = oy * params.stride;
    let w_start = ox * params.stride;

    var best: f32 = -1.0e38;
    var best_idx: u32 = 0u;
    for (var kh: u32 = 0u; kh < params.kernel_size; kh = kh + 1u) {
        let iy = h_start + kh;
        for (var kw: u32 = 0u; kw < params.kernel_size; kw = kw + 1u) {
            let ix = w_start + kw;
            let in_idx = (c * params.h_in + iy) * params.w_in + ix;
            let v = input[in_idx];
            if (v > best) {
                best = v;
                best_idx = in_idx;
            }
        }
    }

    result[idx] = best;
    indices[idx] = best_idx;
}
`
