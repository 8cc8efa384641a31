package main

const indexHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>snekstar</title>
<style>
  body { background: #111; color: #ddd; font-family: monospace; margin: 20px; }
  canvas { background: #000; display: block; margin-top: 10px; }
  #status span { margin-right: 16px; }
</style>
</head>
<body>
<div id="status">
  <span id="game">waiting for a game</span>
  <span id="turn"></span>
  <span id="score"></span>
  <span id="outcome"></span>
</div>
<canvas id="board" width="540" height="540"></canvas>
<script>
const canvas = document.getElementById("board");
const ctx = canvas.getContext("2d");
const $ = (id) => document.getElementById(id);

function draw(f) {
  const cell = Math.floor(Math.min(canvas.width / f.width, canvas.height / f.height));
  ctx.fillStyle = "#000";
  ctx.fillRect(0, 0, canvas.width, canvas.height);
  ctx.fillStyle = "#444";
  for (let x = 0; x < f.width; x++) {
    ctx.fillRect(x * cell, 0, cell - 1, cell - 1);
    ctx.fillRect(x * cell, (f.height - 1) * cell, cell - 1, cell - 1);
  }
  for (let y = 0; y < f.height; y++) {
    ctx.fillRect(0, y * cell, cell - 1, cell - 1);
    ctx.fillRect((f.width - 1) * cell, y * cell, cell - 1, cell - 1);
  }
  if (f.food) {
    ctx.fillStyle = "#e33";
    ctx.fillRect(f.food.x * cell, f.food.y * cell, cell - 1, cell - 1);
  }
  f.body.forEach((p, i) => {
    ctx.fillStyle = i === 0 ? "#e8b04b" : "#2a2";
    ctx.fillRect(p.x * cell, p.y * cell, cell - 1, cell - 1);
  });
  $("game").textContent = f.game_id.slice(0, 8);
  $("turn").textContent = "turn " + f.turn;
  $("score").textContent = "score " + f.score;
  $("outcome").textContent = f.outcome || "";
}

function connect() {
  const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = (ev) => draw(JSON.parse(ev.data));
  ws.onclose = () => setTimeout(connect, 1000);
}
connect();
</script>
</body>
</html>
`
